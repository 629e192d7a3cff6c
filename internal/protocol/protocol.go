// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package protocol implements the wire framing between client and server.
//
// One request and one response travel per connection. A frame is:
//
//	magic "CVD1" | type byte | uint32 header length | JSON header | payload
//
// The JSON header carries all metadata plus a file table of {name, size}
// entries; the raw file bytes follow in table order. Integers are
// big-endian. File payloads are unbounded, so the payload is never parsed,
// only counted against the reader's size limit.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/convertd/pkg/types"
)

// Magic opens every frame. A connection that starts with anything else is
// not speaking this protocol.
var Magic = [4]byte{'C', 'V', 'D', '1'}

// Frame types.
const (
	frameRequest  byte = 0x01
	frameResponse byte = 0x02
)

// MaxHeaderSize caps the JSON header. Headers carry metadata only; a
// larger header means a malformed or hostile frame.
const MaxHeaderSize = 1 << 20

// DefaultMaxPayload caps the total file payload when the caller passes no
// limit of its own.
const DefaultMaxPayload = 512 << 20

// Framing errors. All of them classify as bad_request on the server side.
var (
	ErrBadMagic     = errors.New("protocol: bad magic, not a convertd frame")
	ErrBadFrameType = errors.New("protocol: unexpected frame type")
	ErrHeaderSize   = errors.New("protocol: header exceeds size limit")
	ErrPayloadSize  = errors.New("protocol: payload exceeds size limit")
	ErrTruncated    = errors.New("protocol: truncated frame")
)

// fileInfo is one file-table entry in a frame header.
type fileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// requestHeader is the JSON header of a request frame.
type requestHeader struct {
	ID           string            `json:"id"`
	Op           types.Operation   `json:"op"`
	SourceFormat string            `json:"source_format,omitempty"`
	TargetFormat string            `json:"target_format,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
	Token        string            `json:"token,omitempty"`
	Files        []fileInfo        `json:"files"`
}

// responseHeader is the JSON header of a response frame.
type responseHeader struct {
	ID     string          `json:"id"`
	Status types.Status    `json:"status"`
	Code   types.ErrorCode `json:"code,omitempty"`
	Error  string          `json:"error,omitempty"`
	Files  []fileInfo      `json:"files"`
}

// WriteRequest frames req onto w.
func WriteRequest(w io.Writer, req *types.Request) error {
	hdr := requestHeader{
		ID:           req.ID,
		Op:           req.Op,
		SourceFormat: req.SourceFormat,
		TargetFormat: req.TargetFormat,
		Options:      req.Options,
		Token:        req.Token,
		Files:        fileTable(req.Files),
	}
	return writeFrame(w, frameRequest, hdr, req.Files)
}

// ReadRequest parses one request frame from r. maxPayload caps the sum of
// file sizes; zero or negative means DefaultMaxPayload.
func ReadRequest(r io.Reader, maxPayload int64) (*types.Request, error) {
	var hdr requestHeader
	if err := readFrame(r, frameRequest, &hdr); err != nil {
		return nil, err
	}
	files, err := readFiles(r, hdr.Files, maxPayload)
	if err != nil {
		return nil, err
	}
	return &types.Request{
		ID:           hdr.ID,
		Op:           hdr.Op,
		SourceFormat: hdr.SourceFormat,
		TargetFormat: hdr.TargetFormat,
		Options:      hdr.Options,
		Token:        hdr.Token,
		Files:        files,
	}, nil
}

// WriteResponse frames res onto w.
func WriteResponse(w io.Writer, res *types.Result) error {
	hdr := responseHeader{
		ID:     res.ID,
		Status: res.Status,
		Code:   res.Code,
		Error:  res.Error,
		Files:  fileTable(res.Files),
	}
	return writeFrame(w, frameResponse, hdr, res.Files)
}

// ReadResponse parses one response frame from r.
func ReadResponse(r io.Reader, maxPayload int64) (*types.Result, error) {
	var hdr responseHeader
	if err := readFrame(r, frameResponse, &hdr); err != nil {
		return nil, err
	}
	files, err := readFiles(r, hdr.Files, maxPayload)
	if err != nil {
		return nil, err
	}
	return &types.Result{
		ID:     hdr.ID,
		Status: hdr.Status,
		Code:   hdr.Code,
		Error:  hdr.Error,
		Files:  files,
	}, nil
}

func fileTable(files []types.File) []fileInfo {
	table := make([]fileInfo, len(files))
	for i, f := range files {
		table[i] = fileInfo{Name: f.Name, Size: int64(len(f.Data))}
	}
	return table
}

func writeFrame(w io.Writer, frameType byte, hdr any, files []types.File) error {
	hdrBytes, err := json.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("protocol: marshaling header: %w", err)
	}
	if len(hdrBytes) > MaxHeaderSize {
		return ErrHeaderSize
	}

	prefix := make([]byte, 0, len(Magic)+1+4)
	prefix = append(prefix, Magic[:]...)
	prefix = append(prefix, frameType)
	prefix = binary.BigEndian.AppendUint32(prefix, uint32(len(hdrBytes)))

	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("protocol: writing frame prefix: %w", err)
	}
	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("protocol: writing header: %w", err)
	}
	for _, f := range files {
		if _, err := w.Write(f.Data); err != nil {
			return fmt.Errorf("protocol: writing payload %s: %w", f.Name, err)
		}
	}
	return nil
}

func readFrame(r io.Reader, wantType byte, hdr any) error {
	prefix := make([]byte, len(Magic)+1+4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return truncated(err)
	}
	if [4]byte(prefix[:4]) != Magic {
		return ErrBadMagic
	}
	if prefix[4] != wantType {
		return ErrBadFrameType
	}

	hdrLen := binary.BigEndian.Uint32(prefix[5:])
	if hdrLen > MaxHeaderSize {
		return ErrHeaderSize
	}

	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return truncated(err)
	}
	if err := json.Unmarshal(hdrBytes, hdr); err != nil {
		return fmt.Errorf("protocol: parsing header: %w", err)
	}
	return nil
}

func readFiles(r io.Reader, table []fileInfo, maxPayload int64) ([]types.File, error) {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}

	// Bound each size against the remaining budget rather than summing;
	// a hostile file table with sizes near MaxInt64 would overflow a sum.
	remaining := maxPayload
	for _, fi := range table {
		if fi.Size < 0 {
			return nil, ErrTruncated
		}
		if fi.Size > remaining {
			return nil, ErrPayloadSize
		}
		remaining -= fi.Size
	}

	files := make([]types.File, len(table))
	for i, fi := range table {
		data := make([]byte, fi.Size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, truncated(err)
		}
		files[i] = types.File{Name: fi.Name, Data: data}
	}
	return files, nil
}

// truncated maps EOF-family read errors onto ErrTruncated so callers can
// classify them; other I/O errors pass through.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
