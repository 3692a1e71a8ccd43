// internal/domain/models/gruposet.go
package models

// Stored field names. Both backends persist records under these exact names.
const (
	FieldSociedad   = "IDSOCIEDAD"
	FieldCedi       = "IDCEDI"
	FieldEtiqueta   = "IDETIQUETA"
	FieldValor      = "IDVALOR"
	FieldGrupoEt    = "IDGRUPOET"
	FieldID         = "ID"
	FieldActivo     = "ACTIVO"
	FieldBorrado    = "BORRADO"
	FieldFechaReg   = "FECHAREG"
	FieldHoraReg    = "HORAREG"
	FieldUsuarioReg = "USUARIOREG"
	FieldFechaMod   = "FECHAULTMOD"
	FieldHoraMod    = "HORAULTMOD"
	FieldUsuarioMod = "USUARIOMOD"
)

// KeyFields lists the composite business key in its canonical order.
var KeyFields = []string{FieldSociedad, FieldCedi, FieldEtiqueta, FieldValor, FieldGrupoEt, FieldID}

// GrupoSet is a security-label grouping entry.
//
// NOTE:
//   - The 6-tuple (IDSOCIEDAD, IDCEDI, IDETIQUETA, IDVALOR, IDGRUPOET, ID) is
//     the business key. Mongo enforces it with a unique index; Cosmos relies on
//     a pre-check plus the native id conflict (ID doubles as item id).
//   - ACTIVO and BORRADO are normally complements.
type GrupoSet struct {
	SociedadID int    `bson:"IDSOCIEDAD" json:"IDSOCIEDAD"`
	CediID     int    `bson:"IDCEDI" json:"IDCEDI"`
	EtiquetaID string `bson:"IDETIQUETA" json:"IDETIQUETA"`
	ValorID    string `bson:"IDVALOR" json:"IDVALOR"`
	GrupoEtID  string `bson:"IDGRUPOET" json:"IDGRUPOET"`
	ID         string `bson:"ID" json:"ID"`

	Activo  bool `bson:"ACTIVO" json:"ACTIVO"`
	Borrado bool `bson:"BORRADO" json:"BORRADO"`

	FechaReg   string `bson:"FECHAREG" json:"FECHAREG"`
	HoraReg    string `bson:"HORAREG" json:"HORAREG"`
	UsuarioReg string `bson:"USUARIOREG" json:"USUARIOREG"`

	FechaUltMod string `bson:"FECHAULTMOD,omitempty" json:"FECHAULTMOD,omitempty"`
	HoraUltMod  string `bson:"HORAULTMOD,omitempty" json:"HORAULTMOD,omitempty"`
	UsuarioMod  string `bson:"USUARIOMOD,omitempty" json:"USUARIOMOD,omitempty"`
}

// Key returns the record's composite business key.
func (g GrupoSet) Key() Key {
	return Key{
		SociedadID: g.SociedadID,
		CediID:     g.CediID,
		EtiquetaID: g.EtiquetaID,
		ValorID:    g.ValorID,
		GrupoEtID:  g.GrupoEtID,
		ID:         g.ID,
	}
}

// Key is the composite business key. It is comparable with ==.
type Key struct {
	SociedadID int
	CediID     int
	EtiquetaID string
	ValorID    string
	GrupoEtID  string
	ID         string
}

// Filter returns a filter matching exactly this key.
func (k Key) Filter() Filter {
	return Filter{
		SociedadID: &k.SociedadID,
		CediID:     &k.CediID,
		EtiquetaID: &k.EtiquetaID,
		ValorID:    &k.ValorID,
		GrupoEtID:  &k.GrupoEtID,
		ID:         &k.ID,
	}
}

// ModStamp carries the last-modification audit fields.
type ModStamp struct {
	Fecha   string
	Hora    string
	Usuario string
}
