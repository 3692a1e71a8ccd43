// internal/app/system/keyfilter/changes.go
package keyfilter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cinnalovers/secgruposet/internal/app/system/apperr"
	"github.com/cinnalovers/secgruposet/internal/domain/models"
)

// Fields a caller may write. Modifier audit fields are stamped by the
// service and are not accepted from input.
var writable = map[string]bool{
	models.FieldSociedad:   true,
	models.FieldCedi:       true,
	models.FieldEtiqueta:   true,
	models.FieldValor:      true,
	models.FieldGrupoEt:    true,
	models.FieldID:         true,
	models.FieldActivo:     true,
	models.FieldBorrado:    true,
	models.FieldFechaReg:   true,
	models.FieldHoraReg:    true,
	models.FieldUsuarioReg: true,
}

// ParseChanges converts in into a typed partial update. Unknown fields are
// rejected.
func ParseChanges(in map[string]any) (models.Changes, error) {
	var unknown []string
	for k := range in {
		if !writable[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return models.Changes{}, apperr.Validation(
			"Unrecognized fields: "+strings.Join(unknown, ", "),
			"changeset may only contain record fields; got "+strings.Join(unknown, ", "),
		)
	}

	f, err := Build(in)
	if err != nil {
		return models.Changes{}, err
	}
	c := models.Changes{
		SociedadID: f.SociedadID,
		CediID:     f.CediID,
		EtiquetaID: f.EtiquetaID,
		ValorID:    f.ValorID,
		GrupoEtID:  f.GrupoEtID,
		ID:         f.ID,
		Activo:     f.Activo,
		Borrado:    f.Borrado,
	}
	if c.FechaReg, err = stringField(in, models.FieldFechaReg); err != nil {
		return models.Changes{}, err
	}
	if c.HoraReg, err = stringField(in, models.FieldHoraReg); err != nil {
		return models.Changes{}, err
	}
	if c.UsuarioReg, err = stringField(in, models.FieldUsuarioReg); err != nil {
		return models.Changes{}, err
	}
	return c, nil
}

// Payload picks the create payload out of a request body: body.data, then
// body.gruposet, then the body itself. It returns nil for an empty body.
func Payload(body map[string]any) any {
	if v, ok := body["data"]; ok && v != nil {
		return v
	}
	if v, ok := body["gruposet"]; ok && v != nil {
		return v
	}
	if len(body) == 0 {
		return nil
	}
	return body
}

// ParseRecords accepts one object or an array of objects and parses each as
// a changeset. Anything else, or an empty array, is a validation error.
func ParseRecords(payload any) ([]models.Changes, error) {
	var objs []map[string]any
	switch p := payload.(type) {
	case map[string]any:
		objs = append(objs, p)
	case []any:
		for i, item := range p {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, apperr.Validation(
					"Every element of data must be an object",
					"data["+strconv.Itoa(i)+"] is not an object",
				)
			}
			objs = append(objs, m)
		}
	}
	if len(objs) == 0 {
		return nil, apperr.Validation(
			"Missing body.data",
			"the payload must be an object or a non-empty array of objects in body.data",
		)
	}

	out := make([]models.Changes, 0, len(objs))
	for _, m := range objs {
		c, err := ParseChanges(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// NewRecord turns a parsed changeset into a record ready to insert. The five
// non-ID key fields are required; ID is generated by newID when absent.
// Registration fields and flags are defaulted only where the caller left
// them out.
func NewRecord(c models.Changes, loggedUser string, now time.Time, newID func() string) (models.GrupoSet, error) {
	candidate := models.Filter{
		SociedadID: c.SociedadID,
		CediID:     c.CediID,
		EtiquetaID: c.EtiquetaID,
		ValorID:    c.ValorID,
		GrupoEtID:  c.GrupoEtID,
		ID:         c.ID,
	}
	if c.ID == nil {
		id := newID()
		candidate.ID = &id
	}
	if missing := candidate.MissingKeyField(); missing != "" {
		return models.GrupoSet{}, apperr.Validation(
			"Missing key parameter: "+missing,
			missing+" is required to create a record",
		)
	}
	k, _ := candidate.FullKey()

	g := models.GrupoSet{
		SociedadID: k.SociedadID,
		CediID:     k.CediID,
		EtiquetaID: k.EtiquetaID,
		ValorID:    k.ValorID,
		GrupoEtID:  k.GrupoEtID,
		ID:         k.ID,
		Activo:     true,
		Borrado:    false,
		FechaReg:   Date(now),
		HoraReg:    Clock(now),
		UsuarioReg: userOrSystem(loggedUser),
	}
	if c.Activo != nil {
		g.Activo = *c.Activo
	}
	if c.Borrado != nil {
		g.Borrado = *c.Borrado
	}
	if c.FechaReg != nil {
		g.FechaReg = *c.FechaReg
	}
	if c.HoraReg != nil {
		g.HoraReg = *c.HoraReg
	}
	if c.UsuarioReg != nil {
		g.UsuarioReg = *c.UsuarioReg
	}
	return g, nil
}

// Stamp builds the modifier audit fields for now and the logged user.
func Stamp(now time.Time, loggedUser string) models.ModStamp {
	return models.ModStamp{
		Fecha:   Date(now),
		Hora:    Clock(now),
		Usuario: userOrSystem(loggedUser),
	}
}

// Date formats now as YYYY-MM-DD in UTC.
func Date(now time.Time) string { return now.UTC().Format(time.DateOnly) }

// Clock formats now as HH:MM:SS in UTC.
func Clock(now time.Time) string { return now.UTC().Format(time.TimeOnly) }

func userOrSystem(u string) string {
	if strings.TrimSpace(u) == "" {
		return "SYSTEM"
	}
	return u
}
