package insights

import "github.com/yourusername/trade-journal/internal/models"

type template struct {
	title    string
	message  string
	severity models.InsightSeverity
	category models.InsightCategory
	actions  []models.SuggestedAction
}

var templates = map[models.PatternType]template{
	models.PatternRevengeTrading: {
		title:    "Revenge trading detected",
		message:  "You re-entered {{minutes_since_loss}} minutes after a {{previous_loss}} loss at {{size_ratio}}x the previous size. Revenge trades have cost you {{historical_cost}} so far.",
		severity: models.SeverityWarning,
		category: models.CategoryPsychology,
		actions: []models.SuggestedAction{
			{Label: "Start a cool-down timer", Action: "start_cooldown"},
			{Label: "Review the losing trade", Action: "review_trade"},
		},
	},
	models.PatternOvertrading: {
		title:    "Overtrading today",
		message:  "You have taken {{trades_today}} trades today against a usual {{daily_average}} per day. Overtrading has cost you {{historical_cost}} so far.",
		severity: models.SeverityWarning,
		category: models.CategoryPsychology,
		actions: []models.SuggestedAction{
			{Label: "Set a daily trade limit", Action: "set_trade_limit"},
		},
	},
	models.PatternMondaySyndrome: {
		title:    "Mondays are hurting your results",
		message:  "Your Monday win rate is {{monday_win_rate}}% against {{other_win_rate}}% on other weekdays, a gap of {{difference}} points over {{monday_trades}} Monday trades.",
		severity: models.SeverityWarning,
		category: models.CategoryTiming,
		actions: []models.SuggestedAction{
			{Label: "Reduce Monday size", Action: "reduce_size_monday"},
			{Label: "Review Monday trades", Action: "filter_weekday_monday"},
		},
	},
	models.PatternFridayCarelessness: {
		title:    "Friday afternoon slump",
		message:  "After {{friday_afternoon_win_rate}}% wins on Friday afternoons against {{other_win_rate}}% Monday to Thursday, the week's last hours are costing you. Total cost so far: {{historical_cost}}.",
		severity: models.SeverityInfo,
		category: models.CategoryTiming,
		actions: []models.SuggestedAction{
			{Label: "Block Friday afternoon entries", Action: "block_friday_afternoon"},
		},
	},
	models.PatternNewsTrading: {
		title:    "Trading into news",
		message:  "The entry at {{entry_time}} fell inside the {{window}} news window without the protection of a stop or with a very short hold.",
		severity: models.SeverityWarning,
		category: models.CategoryRisk,
		actions: []models.SuggestedAction{
			{Label: "Open economic calendar", Action: "open_calendar"},
		},
	},
	models.PatternStrategyDegradation: {
		title:    "Strategy performance is fading",
		message:  "{{strategy}} won {{older_win_rate}}% of its older trades but only {{newer_win_rate}}% of the recent ones. Average P&L moved from {{older_avg_pnl}} to {{newer_avg_pnl}}.",
		severity: models.SeverityWarning,
		category: models.CategoryStrategy,
		actions: []models.SuggestedAction{
			{Label: "Compare strategies", Action: "compare_strategies"},
			{Label: "Pause strategy", Action: "pause_strategy"},
		},
	},
	models.PatternStyleDrift: {
		title:    "Drifting from your trading style",
		message:  "{{off_style_count}} of your last {{sample_size}} trades were held like {{dominant_style}}, outside your preferred {{preferred_styles}}.",
		severity: models.SeverityInfo,
		category: models.CategoryStrategy,
		actions: []models.SuggestedAction{
			{Label: "Review trading plan", Action: "open_trading_plan"},
		},
	},
	models.PatternFOMO: {
		title:    "Fear of missing out",
		message:  "You chased {{symbol}} after it had already moved {{move_percent}}%. FOMO entries have cost you {{historical_cost}}.",
		severity: models.SeverityWarning,
		category: models.CategoryPsychology,
		actions: []models.SuggestedAction{
			{Label: "Add entry criteria", Action: "edit_checklist"},
		},
	},
	models.PatternTilt: {
		title:    "You may be on tilt",
		message:  "{{consecutive_losses}} losses in a row in quick succession, totalling {{streak_loss}}. Step away before the next trade.",
		severity: models.SeverityCritical,
		category: models.CategoryPsychology,
		actions: []models.SuggestedAction{
			{Label: "End session", Action: "end_session"},
			{Label: "Start a cool-down timer", Action: "start_cooldown"},
		},
	},
	models.PatternLossAversion: {
		title:    "Holding losers too long",
		message:  "Losing trades are held {{avg_loser_hold}} minutes on average against {{avg_winner_hold}} for winners, and the average loss of {{avg_loss}} outweighs the average win of {{avg_win}}.",
		severity: models.SeverityWarning,
		category: models.CategoryPsychology,
		actions: []models.SuggestedAction{
			{Label: "Review stop placement", Action: "review_stops"},
		},
	},
	models.PatternPositionSizingError: {
		title:    "Oversized position",
		message:  "This position of {{position_size}} is {{size_ratio}}x your average size of {{average_size}}.",
		severity: models.SeverityWarning,
		category: models.CategoryRisk,
		actions: []models.SuggestedAction{
			{Label: "Open position size calculator", Action: "open_position_sizer"},
		},
	},
	models.PatternCorrelationExposure: {
		title:    "Correlated exposure",
		message:  "{{position_count}} open positions move together in {{sector}}, concentrating your risk.",
		severity: models.SeverityWarning,
		category: models.CategoryRisk,
		actions: []models.SuggestedAction{
			{Label: "Review open positions", Action: "review_positions"},
		},
	},
	models.PatternTimeDecay: {
		title:    "Performance fades during long sessions",
		message:  "Your results decline after {{hours_trading}} hours at the screen. Consider a shorter session.",
		severity: models.SeverityInfo,
		category: models.CategoryTiming,
		actions: []models.SuggestedAction{
			{Label: "Set a session timer", Action: "set_session_timer"},
		},
	},
	models.PatternPlanDeviation: {
		title:    "Breaking your trading plan",
		message:  "You broke your rules on {{broken_rate}}% of the last {{rules_tracked}} tracked trades, including this one.",
		severity: models.SeverityWarning,
		category: models.CategoryPsychology,
		actions: []models.SuggestedAction{
			{Label: "Open checklist", Action: "edit_checklist"},
		},
	},
}

var fallbackTemplate = template{
	title:    "Trading pattern detected",
	message:  "A {{pattern_type}} pattern was detected in your recent trades.",
	severity: models.SeverityInfo,
	category: models.CategoryPattern,
}
