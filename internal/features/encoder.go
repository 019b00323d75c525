package features

// UnseenCode is the reserved integer for categorical values that were
// never observed during training. Known values are coded from 1 upward
// in first-seen order, so the unseen code survives the zero-fill pass
// unchanged.
const UnseenCode = 0

// Encoder maps categorical string values to stable integer codes. The
// vocabulary grows only at training time; at scoring time unknown values
// map to UnseenCode. Persisting the encoder alongside the classifier
// keeps merchant/location codes identical between training and scoring.
type Encoder struct {
	Codes map[string]int `json:"codes"`
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{Codes: make(map[string]int)}
}

// Encode returns the code for v. When grow is true and v is unknown, a
// new code is assigned in first-seen order; otherwise unknown values get
// UnseenCode.
func (e *Encoder) Encode(v string, grow bool) int {
	if code, ok := e.Codes[v]; ok {
		return code
	}
	if !grow {
		return UnseenCode
	}
	code := len(e.Codes) + 1
	e.Codes[v] = code
	return code
}

// Len returns the vocabulary size.
func (e *Encoder) Len() int { return len(e.Codes) }

// EncoderSet holds the categorical vocabularies persisted with a trained
// model.
type EncoderSet struct {
	Merchant *Encoder `json:"merchant"`
	Location *Encoder `json:"location"`
}

// NewEncoderSet creates an EncoderSet with empty vocabularies.
func NewEncoderSet() *EncoderSet {
	return &EncoderSet{Merchant: NewEncoder(), Location: NewEncoder()}
}
