// internal/domain/models/gruposetfilter.go
package models

// Filter is a normalized read filter. Nil fields are absent and match anything.
type Filter struct {
	SociedadID *int
	CediID     *int
	EtiquetaID *string
	ValorID    *string
	GrupoEtID  *string
	ID         *string
	Activo     *bool
	Borrado    *bool
}

// FullKey reports whether all six key fields are present and, if so,
// returns them as a Key.
func (f Filter) FullKey() (Key, bool) {
	if f.MissingKeyField() != "" {
		return Key{}, false
	}
	return Key{
		SociedadID: *f.SociedadID,
		CediID:     *f.CediID,
		EtiquetaID: *f.EtiquetaID,
		ValorID:    *f.ValorID,
		GrupoEtID:  *f.GrupoEtID,
		ID:         *f.ID,
	}, true
}

// MissingKeyField returns the first absent key field in canonical order,
// or "" when the key is complete. Empty strings count as absent.
func (f Filter) MissingKeyField() string {
	switch {
	case f.SociedadID == nil:
		return FieldSociedad
	case f.CediID == nil:
		return FieldCedi
	case f.EtiquetaID == nil || *f.EtiquetaID == "":
		return FieldEtiqueta
	case f.ValorID == nil || *f.ValorID == "":
		return FieldValor
	case f.GrupoEtID == nil || *f.GrupoEtID == "":
		return FieldGrupoEt
	case f.ID == nil || *f.ID == "":
		return FieldID
	}
	return ""
}

// Matches reports whether g satisfies every present field of f.
func (f Filter) Matches(g GrupoSet) bool {
	if f.SociedadID != nil && *f.SociedadID != g.SociedadID {
		return false
	}
	if f.CediID != nil && *f.CediID != g.CediID {
		return false
	}
	if f.EtiquetaID != nil && *f.EtiquetaID != g.EtiquetaID {
		return false
	}
	if f.ValorID != nil && *f.ValorID != g.ValorID {
		return false
	}
	if f.GrupoEtID != nil && *f.GrupoEtID != g.GrupoEtID {
		return false
	}
	if f.ID != nil && *f.ID != g.ID {
		return false
	}
	if f.Activo != nil && *f.Activo != g.Activo {
		return false
	}
	if f.Borrado != nil && *f.Borrado != g.Borrado {
		return false
	}
	return true
}

// Changes is a typed partial update. Nil fields are left untouched.
// The modifier stamp is carried separately and always applied.
type Changes struct {
	SociedadID *int
	CediID     *int
	EtiquetaID *string
	ValorID    *string
	GrupoEtID  *string
	ID         *string
	Activo     *bool
	Borrado    *bool
	FechaReg   *string
	HoraReg    *string
	UsuarioReg *string

	Mod ModStamp
}

// ApplyKey overlays any key-field changes onto k.
func (c Changes) ApplyKey(k Key) Key {
	if c.SociedadID != nil {
		k.SociedadID = *c.SociedadID
	}
	if c.CediID != nil {
		k.CediID = *c.CediID
	}
	if c.EtiquetaID != nil {
		k.EtiquetaID = *c.EtiquetaID
	}
	if c.ValorID != nil {
		k.ValorID = *c.ValorID
	}
	if c.GrupoEtID != nil {
		k.GrupoEtID = *c.GrupoEtID
	}
	if c.ID != nil {
		k.ID = *c.ID
	}
	return k
}

// Apply merges the changes and the modifier stamp over g.
func (c Changes) Apply(g GrupoSet) GrupoSet {
	k := c.ApplyKey(g.Key())
	g.SociedadID, g.CediID = k.SociedadID, k.CediID
	g.EtiquetaID, g.ValorID, g.GrupoEtID, g.ID = k.EtiquetaID, k.ValorID, k.GrupoEtID, k.ID
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
	if c.Mod != (ModStamp{}) {
		g.FechaUltMod = c.Mod.Fecha
		g.HoraUltMod = c.Mod.Hora
		g.UsuarioMod = c.Mod.Usuario
	}
	return g
}

// SetFields returns the stored field/value pairs the changes would write,
// modifier stamp included. Used by stores that update in place.
func (c Changes) SetFields() map[string]any {
	set := map[string]any{}
	if c.SociedadID != nil {
		set[FieldSociedad] = *c.SociedadID
	}
	if c.CediID != nil {
		set[FieldCedi] = *c.CediID
	}
	if c.EtiquetaID != nil {
		set[FieldEtiqueta] = *c.EtiquetaID
	}
	if c.ValorID != nil {
		set[FieldValor] = *c.ValorID
	}
	if c.GrupoEtID != nil {
		set[FieldGrupoEt] = *c.GrupoEtID
	}
	if c.ID != nil {
		set[FieldID] = *c.ID
	}
	if c.Activo != nil {
		set[FieldActivo] = *c.Activo
	}
	if c.Borrado != nil {
		set[FieldBorrado] = *c.Borrado
	}
	if c.FechaReg != nil {
		set[FieldFechaReg] = *c.FechaReg
	}
	if c.HoraReg != nil {
		set[FieldHoraReg] = *c.HoraReg
	}
	if c.UsuarioReg != nil {
		set[FieldUsuarioReg] = *c.UsuarioReg
	}
	if c.Mod != (ModStamp{}) {
		set[FieldFechaMod] = c.Mod.Fecha
		set[FieldHoraMod] = c.Mod.Hora
		set[FieldUsuarioMod] = c.Mod.Usuario
	}
	return set
}
