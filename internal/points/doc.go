// Package points caches the name/id mapping of each run's points.
package points
