// Package ingest turns raw spreadsheet grids into canonical availability
// entries. The sheets are maintained by hand (one tab per campus, shifting
// headers, merged rows, embedded links), so everything here is heuristic:
// layout discovery returns a best guess plus warnings, never an error.
package ingest

// Modalities emitted by the parser.
const (
	ModalidadPresencial = "presencial"
	ModalidadMixta      = "mixta"
	ModalidadOnline     = "online"
)

// Entry is one canonical (campus, program, modality) availability record.
// The ID encodes the source tab, row and column; it is not unique on its
// own, downstream dedup uses the normalized (plantel, programa, modalidad)
// tuple.
type Entry struct {
	ID        string `json:"id"`
	Plantel   string `json:"plantel"`
	Programa  string `json:"programa"`
	Modalidad string `json:"modalidad"`
	Horario   string `json:"horario"`
	PlanURL   string `json:"planUrl,omitempty"`
	Activo    bool   `json:"activo"`
}

// SheetDebug is the per-tab diagnostic record. It never affects entry
// correctness and is returned verbatim when the caller asks for debug.
type SheetDebug struct {
	Plantel         string   `json:"plantel"`
	Mode            string   `json:"mode,omitempty"`
	HeaderIndex     *int     `json:"headerIndex,omitempty"`
	YearIndex       *int     `json:"yearIndex,omitempty"`
	ModalidadIndex  *int     `json:"modalidadIndex,omitempty"`
	EscolarizadoCol *int     `json:"escolarizadoCol,omitempty"`
	EjecutivoCol    *int     `json:"ejecutivoCol,omitempty"`
	HorarioCols     []int    `json:"horarioCols,omitempty"`
	Warnings        []string `json:"warnings"`
	Sample          []Entry  `json:"sample,omitempty"`
}

// Payload is the full normalized result of one ingestion run. It is written
// to the cache as a single unit and only ever replaced wholesale.
type Payload struct {
	Availability []Entry      `json:"availability"`
	Debug        []SheetDebug `json:"debug"`
}

// Parse modes recorded in SheetDebug.Mode.
const (
	ModeIgnored  = "ignored"
	ModeOnline   = "online"
	ModeStandard = "standard"
)

func intPtr(v int) *int {
	return &v
}
