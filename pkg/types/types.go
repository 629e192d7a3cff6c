// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for convertd: the operation
// enumeration, the request/result exchanged between client and server, and
// the error taxonomy.
package types

// Operation identifies a conversion or PDF-manipulation action. The set is
// closed: the server rejects any value not listed here.
type Operation string

const (
	// OpConvert converts an input file (JPG, PNG, DOCX, PPTX, XLSX, HTML)
	// to PDF. The source format is taken from the file extension.
	OpConvert Operation = "convert"

	// OpPDFToJPG renders each PDF page to a JPG image.
	OpPDFToJPG Operation = "pdf_to_jpg"

	// OpPDFToWord converts a PDF to DOCX.
	OpPDFToWord Operation = "pdf_to_word"

	// OpPDFToPPTX converts a PDF to PPTX.
	OpPDFToPPTX Operation = "pdf_to_pptx"

	// OpPDFToText extracts the plain text of a PDF.
	OpPDFToText Operation = "pdf_to_text"

	// OpMerge appends two or more PDFs into one.
	OpMerge Operation = "merge"

	// OpSplit cuts a PDF into one output per page range.
	OpSplit Operation = "split"

	// OpCompress optimizes a PDF to reduce its size.
	OpCompress Operation = "compress"

	// OpEncrypt password-protects a PDF.
	OpEncrypt Operation = "encrypt"

	// OpDecrypt removes password protection from a PDF.
	OpDecrypt Operation = "decrypt"

	// OpRotate rotates selected pages by a multiple of 90 degrees.
	OpRotate Operation = "rotate"

	// OpWatermark stamps a text watermark on every page.
	OpWatermark Operation = "watermark"

	// OpAddNumbers stamps "Page n of N" on every page.
	OpAddNumbers Operation = "add_numbers"
)

// Operations lists every supported operation in a stable order.
func Operations() []Operation {
	return []Operation{
		OpConvert, OpPDFToJPG, OpPDFToWord, OpPDFToPPTX, OpPDFToText,
		OpMerge, OpSplit, OpCompress, OpEncrypt, OpDecrypt,
		OpRotate, OpWatermark, OpAddNumbers,
	}
}

// Valid reports whether o is one of the supported operations.
func (o Operation) Valid() bool {
	for _, op := range Operations() {
		if o == op {
			return true
		}
	}
	return false
}

// Option keys recognized in Request.Options.
const (
	// OptPassword is the password for encrypt and decrypt.
	OptPassword = "password"

	// OptRanges is the page-range list for split, e.g. "1-3,5,7-".
	OptRanges = "ranges"

	// OptPages is the page selection for rotate: "all" or a range list.
	OptPages = "pages"

	// OptAngle is the rotation angle in degrees, a multiple of 90.
	OptAngle = "angle"

	// OptPosition is the page-number placement: bottom-center (default),
	// bottom-left, bottom-right, top-center, top-left, or top-right.
	OptPosition = "position"

	// OptText is the watermark text.
	OptText = "text"
)

// File is a named payload travelling in a request or result.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Request is one conversion request. It is created by the client, consumed
// exactly once by the server, and never persisted.
type Request struct {
	// ID identifies the request in logs and history records.
	ID string `json:"id"`

	// Op is the requested operation.
	Op Operation `json:"op"`

	// SourceFormat and TargetFormat are lowercase extensions without the
	// dot (e.g. "docx", "pdf"). SourceFormat defaults to the extension of
	// the first input file.
	SourceFormat string `json:"source_format,omitempty"`
	TargetFormat string `json:"target_format,omitempty"`

	// Options holds operation parameters keyed by the Opt* constants.
	Options map[string]string `json:"options,omitempty"`

	// Token is the optional shared secret for server authentication.
	Token string `json:"token,omitempty"`

	// Files are the input payloads. Merge takes two or more; every other
	// operation takes exactly one.
	Files []File `json:"-"`
}

// Option returns the named option or the empty string.
func (r *Request) Option(key string) string {
	return r.Options[key]
}

// Status is the outcome of a request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the server's answer to one Request.
type Result struct {
	// ID echoes the request ID.
	ID string `json:"id"`

	// Status is success or failure.
	Status Status `json:"status"`

	// Code classifies the failure; empty on success.
	Code ErrorCode `json:"code,omitempty"`

	// Error is a human-readable failure message; empty on success.
	Error string `json:"error,omitempty"`

	// Files are the produced payloads; empty on failure.
	Files []File `json:"-"`
}

// Failed reports whether the result carries a failure status.
func (r *Result) Failed() bool {
	return r.Status == StatusFailure
}
