// internal/domain/models/softdelete.go
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Store-level outcomes shared by every backend adapter.
var (
	ErrNotFound         = errors.New("gruposet: record not found")
	ErrDuplicateKey     = errors.New("gruposet: composite key already exists")
	ErrConcurrentUpdate = errors.New("gruposet: record was modified concurrently")
)

// SoftDeletePolicy selects how a logical delete changes the ACTIVO/BORRADO flags.
type SoftDeletePolicy string

const (
	// SoftDeleteSet always deactivates: ACTIVO=false, BORRADO=true.
	SoftDeleteSet SoftDeletePolicy = "set"
	// SoftDeleteToggle flips ACTIVO and sets BORRADO to its complement,
	// so a second call reactivates the record.
	SoftDeleteToggle SoftDeletePolicy = "toggle"
)

// ParseSoftDeletePolicy accepts "set" or "toggle" (case-insensitive).
func ParseSoftDeletePolicy(s string) (SoftDeletePolicy, error) {
	switch p := SoftDeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case SoftDeleteSet, SoftDeleteToggle:
		return p, nil
	}
	return "", fmt.Errorf("unknown soft-delete policy %q (want %q or %q)", s, SoftDeleteSet, SoftDeleteToggle)
}

// SoftDelete applies the policy and stamp to g and returns the new state.
func (p SoftDeletePolicy) SoftDelete(g GrupoSet, stamp ModStamp) GrupoSet {
	if p == SoftDeleteToggle {
		g.Activo = !g.Activo
	} else {
		g.Activo = false
	}
	g.Borrado = !g.Activo
	g.FechaUltMod = stamp.Fecha
	g.HoraUltMod = stamp.Hora
	g.UsuarioMod = stamp.Usuario
	return g
}
