// Package game holds the haiku game records (administrators and haiku
// instances), password handling and the admin form validation rules.
package game
