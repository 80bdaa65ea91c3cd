package assembler

// LabelType represents the different kinds of labels a builder hands out.
type LabelType int

const (
	SimpleLabel LabelType = iota
	HandlerLabel
)

// Label represents a jump target in a routine under construction.
// SimpleLabels correspond to ordinary jump targets.
// HandlerLabels mark the entry of an exception handler.
type Label struct {
	labelType LabelType
	labelText string
}

// NewSimpleLabel creates a new simple label with the given text.
func NewSimpleLabel(text string) Label {
	return Label{labelType: SimpleLabel, labelText: text}
}

// NewHandlerLabel creates a new handler-entry label with the given text.
func NewHandlerLabel(text string) Label {
	return Label{labelType: HandlerLabel, labelText: text}
}

func (l Label) Name() string {
	return l.labelText
}

func (l Label) Type() LabelType {
	return l.labelType
}
