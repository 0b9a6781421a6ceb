package notifier

import (
	"fmt"
	"html"
	"strings"

	"TacticalSentinel/internal/model"
)

const rule = "──────────────────"

var sleeveLabels = map[model.Sleeve]string{
	model.SleeveEquity:       "Equity",
	model.SleeveGold:         "Gold",
	model.SleeveTacticalBond: "Bond",
}

// pct renders a fraction as a percentage; undefined values print as n/a.
func pct(v float64) string {
	if !model.Defined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatDailyReport formats the target allocation into a Telegram message.
func FormatDailyReport(a *model.Allocation) string {
	var b strings.Builder

	b.WriteString("🔔 <b>Tactical Allocation</b> daily report\n")
	b.WriteString(fmt.Sprintf("   (close of %s)\n", a.AsOf.Format("2006-01-02")))

	// Market recap
	b.WriteString("\n📈 <b>Prior session</b>\n")
	for _, s := range a.Sleeves {
		name := html.EscapeString(s.Symbol)
		if s.Sleeve == model.SleeveTacticalBond {
			name = fmt.Sprintf("Bond (%s)", name)
		}
		b.WriteString(fmt.Sprintf("  • %s: %s\n", name, pct(s.PrevChange)))
	}
	b.WriteString(fmt.Sprintf("  • Cash (%s): %s p.a.\n", html.EscapeString(a.CashSymbol), pct(a.CashYield)))
	regime := "falling"
	if a.Regime.Rising {
		regime = "rising"
	}
	if model.Defined(a.Regime.RateMA) {
		b.WriteString(fmt.Sprintf("  • Rates %s: %.3f vs MA %.3f\n", regime, a.Regime.Rate, a.Regime.RateMA))
	} else {
		b.WriteString(fmt.Sprintf("  • Rates %s: %.3f (MA warming up)\n", regime, a.Regime.Rate))
	}

	// MA signals
	b.WriteString("\n📊 <b>Trend signals</b>\n")
	for _, s := range a.Sleeves {
		b.WriteString(fmt.Sprintf("  • %s: %d/%d ON (→ %.0f%% invested)\n",
			sleeveLabels[s.Sleeve], s.Score, s.MaxScore, s.Scalar*100))
	}

	// Target weights
	b.WriteString("\n💰 <b>Target weights</b>\n")
	for _, w := range a.Weights {
		b.WriteString(fmt.Sprintf("  • %s: %s\n", html.EscapeString(w.Symbol), pct(w.Weight)))
	}
	b.WriteString("  " + rule + "\n")
	b.WriteString(fmt.Sprintf("  Total: %s\n", pct(a.Total)))

	return b.String()
}

// FormatError renders the single failure message sent instead of a report.
func FormatError(err error) string {
	return fmt.Sprintf("❌ <b>Tactical Allocation</b> run failed\n\n%s", html.EscapeString(err.Error()))
}

// FormatHelp lists the commands the bot answers.
func FormatHelp() string {
	return "Available commands:\n• /report – recompute today's target weights\n• /help – this message"
}
