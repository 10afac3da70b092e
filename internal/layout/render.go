package layout

import (
	"strings"
	"time"

	"github.com/theirongolddev/burnline/internal/cli"
	"github.com/theirongolddev/burnline/internal/config"
	"github.com/theirongolddev/burnline/internal/model"
)

// Placeholder stands in for any field whose data is unavailable.
const Placeholder = "—"

// Frame is everything one render reads. Nil Limits or Spend means the source
// was unavailable.
type Frame struct {
	Snapshot model.Snapshot
	Usage    model.ContextUsage
	Limits   *model.RateLimitStatus
	Spend    *model.SpendReport
	Now      time.Time
}

// Style carries the presentation settings.
type Style struct {
	Palette    cli.Palette
	Symbols    config.SymbolConfig
	Thresholds config.ThresholdConfig
	CostLink   bool
	UsageURL   string
}

// NewStyle builds a Style from configuration.
func NewStyle(cfg config.Config) Style {
	return Style{
		Palette:    cli.NewPalette(cfg.Display.Color),
		Symbols:    cfg.Symbols,
		Thresholds: cfg.Thresholds,
		CostLink:   cfg.Display.CostLink,
		UsageURL:   cfg.Display.UsageURL,
	}
}

// Lines is the rendered statusline.
type Lines [2]string

// String joins both lines, each newline-terminated.
func (l Lines) String() string {
	return l[0] + "\n" + l[1] + "\n"
}

// PlaceholderLines is printed when rendering itself fails.
func PlaceholderLines() Lines {
	return Lines{
		Placeholder,
		"5h: " + Placeholder + " | wk: " + Placeholder + " | 1d: " + Placeholder + " 7d: " + Placeholder + " 30d: " + Placeholder,
	}
}

// Render assembles both lines for a mode. It only reads the frame.
func Render(f Frame, m Mode, st Style) Lines {
	r := renderer{frame: f, style: st, tmpl: templateFor(m)}
	if f.Now.IsZero() {
		r.frame.Now = time.Now()
	}

	var out Lines
	for i, line := range r.tmpl.lines {
		parts := make([]string, 0, len(line))
		for _, g := range line {
			cells := make([]string, 0, len(g))
			for _, field := range g {
				if cell := r.field(field); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, " "))
			}
		}
		out[i] = strings.Join(parts, r.tmpl.sep)
	}
	return out
}

type renderer struct {
	frame Frame
	style Style
	tmpl  template
}

// field renders one field. An empty result omits it from its group.
func (r renderer) field(f Field) string {
	switch f {
	case FieldModel:
		return r.model()
	case FieldContext:
		return r.context()
	case FieldRemaining:
		return r.remaining()
	case FieldSessionCost:
		return r.sessionCost()
	case FieldDuration:
		return r.duration()
	case FieldBurnRate:
		return r.burnRate()
	case FieldRequestCost:
		return r.requestCost()
	case FieldFiveHour:
		return r.fiveHour()
	case FieldWeekly:
		return r.weekly()
	case FieldWeeklyModels:
		return r.weeklyModels()
	case FieldSpend:
		return r.spend()
	case FieldSparkline:
		return r.sparkline()
	}
	return Placeholder
}

func (r renderer) label(name, value string) string {
	return name + r.tmpl.labelSep + value
}

func (r renderer) barWidth() int {
	if r.tmpl.compactBars {
		return r.style.Symbols.CompactBarWidth
	}
	return r.style.Symbols.BarWidth
}

func (r renderer) pctTier(fraction float64) cli.Tier {
	return cli.Severity(fraction*100, r.style.Thresholds.Context)
}

// gauge renders a fraction as a bar (plus percentage in full mode) or, in
// ultra mode, as a bare percentage.
func (r renderer) gauge(fraction float64, glyphs [2]string) string {
	p := r.style.Palette
	tier := r.pctTier(fraction)
	if r.tmpl.bare {
		return p.Tier(tier, cli.FormatPercent(fraction))
	}
	bar := p.Tier(tier, cli.Bar(fraction, r.barWidth(), glyphs))
	if r.tmpl.compactBars {
		return bar
	}
	return bar + " " + p.Tier(tier, cli.FormatPercent(fraction))
}

func (r renderer) model() string {
	snap := r.frame.Snapshot
	name := model.ModelLabel(snap.ModelID, snap.ModelName)
	if name == "" {
		return Placeholder
	}
	if r.frame.Limits == nil {
		return name
	}
	fam := model.DetectFamily(snap.ModelID + " " + snap.ModelName)
	if w := r.frame.Limits.WeeklyFor(fam); w != nil {
		return r.style.Palette.Tier(r.pctTier(w.Pct), name)
	}
	return name
}

func (r renderer) context() string {
	if !r.frame.Usage.Known {
		return Placeholder
	}
	return r.gauge(r.frame.Usage.Fraction, r.style.Symbols.Ctx)
}

func (r renderer) remaining() string {
	u := r.frame.Usage
	if !u.Known {
		return Placeholder
	}
	s := cli.FormatTokens(u.Remaining) + "▼"
	if u.Overshoot {
		return r.style.Palette.Tier(cli.Critical, s)
	}
	return s
}

func (r renderer) sessionCost() string {
	snap := r.frame.Snapshot
	if !snap.HasCost {
		return r.label("ses", Placeholder)
	}
	s := cli.FormatCost(snap.CostUSD)
	if r.style.CostLink {
		s = r.style.Palette.Link(r.style.UsageURL, s)
	}
	return r.label("ses", s)
}

// minShownDuration is the session age below which the duration is omitted.
const minShownDuration = 60_000

func (r renderer) duration() string {
	if !r.frame.Snapshot.HasDur {
		return Placeholder
	}
	if r.frame.Snapshot.Duration <= minShownDuration {
		return ""
	}
	return r.style.Palette.Dim(cli.FormatDuration(r.frame.Snapshot.Duration))
}

func (r renderer) burnRate() string {
	u := r.frame.Usage
	if !u.HasBurnRate {
		return Placeholder
	}
	var parts []string
	if u.TokensPerMin > 0 {
		parts = append(parts, cli.FormatRate(u.TokensPerMin))
	}
	if u.CostPerHour > 0 {
		parts = append(parts, cli.FormatCost(u.CostPerHour)+"/h")
	}
	if len(parts) == 0 {
		return Placeholder
	}
	return r.style.Palette.Dim(strings.Join(parts, " "))
}

func (r renderer) requestCost() string {
	u := r.frame.Usage
	if u.CostSource == model.CostNone {
		return r.label("req", Placeholder)
	}
	tier := cli.Severity(u.RequestCost, r.style.Thresholds.Cost)
	return r.label("req", r.style.Palette.Cost(tier, cli.FormatCost(u.RequestCost)))
}

func (r renderer) fiveHour() string {
	if r.frame.Limits == nil || r.frame.Limits.FiveHour == nil {
		return r.label("5h", Placeholder)
	}
	w := r.frame.Limits.FiveHour
	s := r.gauge(w.Pct, r.style.Symbols.Lim)
	if !w.ResetsAt.IsZero() {
		s += " " + r.style.Palette.Dim(cli.FormatCountdown(w.ResetsAt.Sub(r.frame.Now)))
	}
	return r.label("5h", s)
}

func (r renderer) weekly() string {
	if r.frame.Limits == nil || r.frame.Limits.SevenDay == nil {
		return r.label("wk", Placeholder)
	}
	w := r.frame.Limits.SevenDay
	s := r.style.Palette.Tier(r.pctTier(w.Pct), cli.FormatPercent(w.Pct))
	if r.tmpl.pie {
		s = cli.Pie(w.Pct*100, r.style.Symbols.Pie) + " " + s
	}
	return r.label("wk", s)
}

func (r renderer) weeklyModels() string {
	fams := []model.Family{model.Opus, model.Sonnet, model.Haiku}
	parts := make([]string, 0, len(fams))
	for _, fam := range fams {
		var w *model.Window
		if r.frame.Limits != nil {
			w = r.frame.Limits.ForFamily(fam)
		}
		if w == nil {
			parts = append(parts, r.style.Palette.Dim(fam.Initial()+":"+Placeholder))
			continue
		}
		pct := strings.TrimSuffix(cli.FormatPercent(w.Pct), "%")
		parts = append(parts, r.style.Palette.Tier(r.pctTier(w.Pct), fam.Initial()+":"+pct))
	}
	return strings.Join(parts, " ")
}

func (r renderer) spend() string {
	values := [3]string{Placeholder, Placeholder, Placeholder}
	if s := r.frame.Spend; s != nil {
		values = [3]string{cli.FormatSpend(s.Today), cli.FormatSpend(s.Week), cli.FormatSpend(s.Month)}
	}
	return r.label("1d", values[0]) + " " + r.label("7d", values[1]) + " " + r.label("30d", values[2])
}

func (r renderer) sparkline() string {
	if r.frame.Spend == nil || len(r.frame.Spend.Series) == 0 {
		return Placeholder
	}
	return r.style.Palette.Dim(cli.Sparkline(r.frame.Spend.Series, r.style.Symbols.Spark))
}
