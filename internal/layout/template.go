package layout

// Field identifies one statusline slot.
type Field int

// Line 1 fields.
const (
	FieldModel Field = iota
	FieldContext
	FieldRemaining
	FieldSessionCost
	FieldDuration
	FieldBurnRate
	FieldRequestCost

	// Line 2 fields.
	FieldFiveHour
	FieldWeekly
	FieldWeeklyModels
	FieldSpend
	FieldSparkline
)

var fieldNames = [...]string{
	FieldModel:        "model",
	FieldContext:      "context",
	FieldRemaining:    "remaining",
	FieldSessionCost:  "session_cost",
	FieldDuration:     "duration",
	FieldBurnRate:     "burn_rate",
	FieldRequestCost:  "request_cost",
	FieldFiveHour:     "five_hour",
	FieldWeekly:       "weekly",
	FieldWeeklyModels: "weekly_models",
	FieldSpend:        "spend",
	FieldSparkline:    "sparkline",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// group is a run of fields joined by a single space.
type group []Field

// template is the fixed shape of one layout mode.
type template struct {
	lines [2][]group
	sep   string // between groups

	compactBars bool   // use the compact bar width
	bare        bool   // percentages without bars
	pie         bool   // weekly pie glyph
	labelSep    string // between a label and its value
}

var templates = map[Mode]template{
	Full: {
		lines: [2][]group{
			{{FieldModel, FieldContext, FieldRemaining}, {FieldSessionCost, FieldDuration, FieldBurnRate}, {FieldRequestCost}},
			{{FieldFiveHour}, {FieldWeekly, FieldWeeklyModels}, {FieldSpend, FieldSparkline}},
		},
		sep:      " | ",
		pie:      true,
		labelSep: ": ",
	},
	Compact: {
		lines: [2][]group{
			{{FieldModel, FieldContext, FieldRemaining}, {FieldSessionCost, FieldDuration}},
			{{FieldFiveHour}, {FieldWeekly, FieldWeeklyModels}, {FieldSpend}},
		},
		sep:         " | ",
		compactBars: true,
		labelSep:    ": ",
	},
	Ultra: {
		lines: [2][]group{
			{{FieldModel, FieldContext, FieldRemaining, FieldSessionCost}},
			{{FieldFiveHour, FieldWeekly, FieldSpend}},
		},
		sep:      " ",
		bare:     true,
		labelSep: ":",
	},
}

func templateFor(m Mode) template {
	if t, ok := templates[m]; ok {
		return t
	}
	return templates[Ultra]
}

// Fields returns the fields a mode renders on each line, in order.
func Fields(m Mode) [2][]Field {
	var out [2][]Field
	for i, line := range templateFor(m).lines {
		for _, g := range line {
			out[i] = append(out[i], g...)
		}
	}
	return out
}
