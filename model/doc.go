// Package model holds the document representation exchanged between the
// converter and its callers.
//
// Decoding a .docx package produces a [DocumentContent]: the editor HTML plus
// the side manifests the editor needs to re-encode the document later.
//
//	content, warnings, err := docxhtml.Decode(data)
//	fmt.Println(content.HTML)
//
// # Manifests
//
//   - [DocumentMetadata] - core and extended package properties
//   - [DocumentImage] - embedded media keyed by relationship id
//   - [DocumentStyle] - resolved paragraph and character styles
//   - [HeaderFooterContent] - header or footer HTML with page variants
//
// # Warnings
//
// Conversion is best-effort. Recoverable problems (an unsupported media part,
// a malformed field, a style that cannot be found) are reported as [Warning]
// values instead of errors.
package model
