// Package worldbank is a minimal client for the indicator endpoint of the World Bank Open Data API.
package worldbank
