// Package language normalizes target-language input to the primary ISO 639-1
// subtag used for voice resolution, and maps codes to display names.
package language
