// Package employment provides tools returning World Bank employment indicators:
// employment by sector, employment-to-population ratio and unemployment rate.
//
// Every tool takes an ISO 2- or 3-letter country code and a year in [1991, 2100].
// Invalid input is reported in the `error` field of the result,
// a missing observation is reported as a message rather than an error.
package employment
