// internal/app/system/bitacora/response.go
package bitacora

// Response is the uniform envelope written for every dispatch call.
// Success and failure share the same shape; Error is set only on failure.
type Response struct {
	Success     bool          `json:"success"`
	Status      int           `json:"status"`
	ID          string        `json:"id"`
	ProcessType string        `json:"processType"`
	DBServer    string        `json:"dbServer"`
	LoggedUser  string        `json:"loggedUser"`
	MessageUSR  string        `json:"messageUSR"`
	MessageDEV  string        `json:"messageDEV,omitempty"`
	CountData   int           `json:"countData"`
	DataRes     any           `json:"dataRes"`
	Data        []Entry       `json:"data"`
	Error       *Notification `json:"error,omitempty"`
}

// Notification is the protocol-level error object attached to a failure,
// mirroring the OData error shape.
type Notification struct {
	Code            string `json:"code"`
	Status          int    `json:"status"`
	Message         string `json:"message"`
	Target          string `json:"target,omitempty"`
	NumericSeverity int    `json:"numericSeverity"`
}

// OK projects a successful log into the envelope.
func (b Bitacora) OK() Response {
	r := b.response()
	r.Success = true
	return r
}

// Fail projects a failed log into the envelope and attaches the error
// notification carrying the same status and messages.
func (b Bitacora) Fail(code string) Response {
	r := b.response()
	r.Success = false
	r.Error = &Notification{
		Code:            code,
		Status:          r.Status,
		Message:         r.MessageUSR,
		Target:          r.MessageDEV,
		NumericSeverity: 1,
	}
	return r
}

func (b Bitacora) response() Response {
	return Response{
		Status:      b.Status(),
		ID:          b.id,
		ProcessType: b.processType,
		DBServer:    b.dbServer,
		LoggedUser:  b.loggedUser,
		MessageUSR:  b.messageUSR,
		MessageDEV:  b.messageDEV,
		CountData:   Count(b.dataRes),
		DataRes:     b.dataRes,
		Data:        b.Entries(),
	}
}
