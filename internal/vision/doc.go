// Package vision asks an OpenAI-compatible vision model to describe images
// and video frames so downloads with useless names can still be renamed
// sensibly. Analysis is strictly best-effort: the analyzer is wired into the
// metadata pipeline as one extractor among several, and any transport, model,
// or parsing failure simply leaves the attributes untouched.
package vision
