package query

const (
	errorTitle       = "Error Processing Query"
	notRelevantTitle = "Not Relevant Query"
)

// errorFallback is shown when the request itself failed.
func errorFallback() DisplayConfig {
	return DisplayConfig{
		DisplayType: DisplayCards,
		Cards: []MetricCard{{
			Title:       errorTitle,
			Value:       "Error",
			Description: "The query could not be processed. Please try again later.",
			Trend:       TrendNeutral,
		}},
	}
}

// notRelevantFallback is shown when the service answered without a usable view.
func notRelevantFallback() DisplayConfig {
	return DisplayConfig{
		DisplayType: DisplayCards,
		Cards: []MetricCard{{
			Title:       notRelevantTitle,
			Value:       "N/A",
			Description: "The query does not match the energy data available. Try asking about consumption or cost.",
			Trend:       TrendNeutral,
		}},
	}
}
