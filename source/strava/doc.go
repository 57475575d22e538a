// Package strava normalizes Strava activity summaries pulled through
// the activities API. Activity metrics map one-to-one onto columns; the
// polyline map object stays JSON.
package strava
