package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsToolCallsSucceeded is base for counter metric for tool calls that returned a result
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	// StatsToolCallsRejected counts calls refused by input validation
	StatsToolCallsRejected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_rejected",
		Help:         "stats_tool_calls_rejected provides total tool calls rejected by input validation",
		RequiredTags: []string{"tool"},
	}

	StatsUpstreamRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_upstream_requests",
		Help:         "stats_upstream_requests provides total requests sent to World Bank API",
		RequiredTags: []string{"indicator", "status"},
	}

	StatsUpstreamNoData = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_upstream_no_data",
		Help:         "stats_upstream_no_data provides total World Bank responses without observations",
		RequiredTags: []string{"indicator"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfUpstreamRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_upstream_request",
		Help:         "perf_upstream_request provides duration of World Bank API request",
		RequiredTags: []string{"indicator"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfToolCall,
	&PerfUpstreamRequest,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsRejected,
	&StatsToolCallsSucceeded,
	&StatsUpstreamNoData,
	&StatsUpstreamRequests,
}
