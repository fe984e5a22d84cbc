package http

import (
	"net/http"

	"gastos/internal/core"
	"gastos/internal/log"
)

type presetOption struct {
	Value    string
	Label    string
	Selected bool
}

type summaryView struct {
	Nav     string
	Presets []presetOption
	Preset  string
	From    string
	To      string
	Panel   summaryPanel
}

// summaryPanel is the partial refreshed when the range changes.
type summaryPanel struct {
	Label           string
	From            string
	To              string
	Empty           string
	TotalIncome     string
	TotalExpense    string
	Balance         string
	BalanceNegative bool
	IncomeWidth     int
	ExpenseWidth    int
	Records         []recordView
}

func presetOptions(selected core.Preset) []presetOption {
	out := make([]presetOption, 0, len(core.Presets()))
	for _, p := range core.Presets() {
		out = append(out, presetOption{Value: string(p), Label: p.Label(), Selected: p == selected})
	}
	return out
}

func newSummaryPanel(params RangeParams, report core.Report) summaryPanel {
	panel := summaryPanel{
		Label: params.Preset.Label(),
		From:  params.From.String(),
		To:    params.To.String(),
	}
	if len(report.Entries) == 0 {
		panel.Empty = msgNoRecordsPeriod
		return panel
	}
	sum := report.Summary
	panel.TotalIncome = core.FormatCurrency(sum.TotalIncome)
	panel.TotalExpense = core.FormatCurrency(sum.TotalExpense)
	panel.Balance = core.FormatCurrency(sum.Balance)
	panel.BalanceNegative = sum.Balance.IsNegative()
	panel.IncomeWidth, panel.ExpenseWidth = barWidths(sum.TotalIncome, sum.TotalExpense)
	panel.Records = recordViews(report.Entries)
	return panel
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) (RangeParams, core.Report, bool) {
	params, err := ParseRangeParams(r.URL.Query(), s.now())
	if err != nil {
		writeStoreError(w, r, log.OpSummary, err)
		return params, core.Report{}, false
	}
	report, err := s.store.Summary(r.Context(), params.Range)
	if err != nil {
		writeStoreError(w, r, log.OpSummary, err)
		return params, core.Report{}, false
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Summary computed",
		log.FieldRangeStart, params.Range.Start,
		log.FieldRangeEnd, params.Range.End,
		log.FieldCount, len(report.Entries))
	return params, report, true
}

// handleSummaryPage renders the summary page for the requested range,
// today by default.
func (s *Server) handleSummaryPage(w http.ResponseWriter, r *http.Request) {
	params, report, ok := s.summarize(w, r)
	if !ok {
		return
	}
	s.render(w, r, "summary.html", summaryView{
		Nav:     "resumen",
		Presets: presetOptions(params.Preset),
		Preset:  string(params.Preset),
		From:    params.From.String(),
		To:      params.To.String(),
		Panel:   newSummaryPanel(params, report),
	})
}

// handleSummaryPartial renders only the totals, chart and matching records.
func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	params, report, ok := s.summarize(w, r)
	if !ok {
		return
	}
	s.render(w, r, "summary_panel", newSummaryPanel(params, report))
}
