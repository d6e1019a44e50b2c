// Package gtranslate adapts the public Google Translate web endpoint as the
// pipeline's translation engine. The source language is auto-detected; the
// transcript is translated as one block.
package gtranslate
