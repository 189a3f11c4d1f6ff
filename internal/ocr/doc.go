// Package ocr reads text from screenshot regions using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It is used
// to label visual blocks with their text when a page has to be analyzed from
// pixels alone, so the heuristic detector can recognize calls to action and
// prices.
//
// # Prerequisites
//
// Tesseract and its development headers must be installed to build:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Language data is required at run time for each language used. A missing
// language makes ReadRegion fail; callers treat that as "no text".
//
// # Temporary Files
//
// Regions are cropped in memory and handed to Tesseract as PNG bytes, so no
// temporary files are written.
package ocr
