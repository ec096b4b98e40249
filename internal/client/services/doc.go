// Package services contains the application services of the profile client:
// the session manager, the profile form and viewers, the error taxonomy every
// failure is classified into, and the Controller that ties them to the
// application state and the status banner.
package services
