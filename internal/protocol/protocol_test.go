// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convertd/pkg/types"
)

func sampleRequest() *types.Request {
	return &types.Request{
		ID:           "req-1",
		Op:           types.OpRotate,
		SourceFormat: "pdf",
		TargetFormat: "pdf",
		Options:      map[string]string{types.OptPages: "all", types.OptAngle: "90"},
		Files: []types.File{
			{Name: "input.pdf", Data: []byte("%PDF-1.7 fake body")},
		},
	}
}

func TestRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := sampleRequest()
	require.NoError(t, WriteRequest(&buf, req))

	got, err := ReadRequest(&buf, 0)
	require.NoError(t, err)

	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, req.Op, got.Op)
	assert.Equal(t, req.Options, got.Options)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "input.pdf", got.Files[0].Name)
	assert.Equal(t, req.Files[0].Data, got.Files[0].Data)
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		res  *types.Result
	}{
		{
			name: "success with two files",
			res: &types.Result{
				ID:     "req-2",
				Status: types.StatusSuccess,
				Files: []types.File{
					{Name: "page_001.jpg", Data: []byte{0xff, 0xd8, 0x01}},
					{Name: "page_002.jpg", Data: []byte{0xff, 0xd8, 0x02}},
				},
			},
		},
		{
			name: "failure with code and message",
			res: &types.Result{
				ID:     "req-3",
				Status: types.StatusFailure,
				Code:   types.CodeConversionFailed,
				Error:  "conversion_failed: wrong password",
			},
		},
		{
			name: "empty file entry",
			res: &types.Result{
				ID:     "req-4",
				Status: types.StatusSuccess,
				Files:  []types.File{{Name: "out.txt", Data: []byte{}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteResponse(&buf, tt.res))

			got, err := ReadResponse(&buf, 0)
			require.NoError(t, err)

			assert.Equal(t, tt.res.ID, got.ID)
			assert.Equal(t, tt.res.Status, got.Status)
			assert.Equal(t, tt.res.Code, got.Code)
			assert.Equal(t, tt.res.Error, got.Error)
			require.Len(t, got.Files, len(tt.res.Files))
			for i := range tt.res.Files {
				assert.Equal(t, tt.res.Files[i].Name, got.Files[i].Name)
				assert.Equal(t, tt.res.Files[i].Data, got.Files[i].Data)
			}
		})
	}
}

func TestReadRequestMalformed(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, WriteRequest(&valid, sampleRequest()))

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{
			name:    "empty stream",
			input:   nil,
			wantErr: ErrTruncated,
		},
		{
			name:    "bad magic",
			input:   []byte("HTTP/1.1 400 Bad Request\r\n\r\n"),
			wantErr: ErrBadMagic,
		},
		{
			name:    "truncated header",
			input:   valid.Bytes()[:12],
			wantErr: ErrTruncated,
		},
		{
			name:    "truncated payload",
			input:   valid.Bytes()[:valid.Len()-5],
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(bytes.NewReader(tt.input), 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadRequestOverflowingFileTable(t *testing.T) {
	// A file table whose sizes sum past MaxInt64 must be rejected by the
	// payload limit, not wrap negative and drive a huge allocation.
	tests := []struct {
		name  string
		sizes []int64
	}{
		{"two entries wrapping the sum", []int64{1, math.MaxInt64}},
		{"single maximal entry", []int64{math.MaxInt64}},
		{"many large entries", []int64{1 << 62, 1 << 62, 1 << 62, 1 << 62}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := requestHeader{ID: "evil", Op: types.OpMerge}
			for i, size := range tt.sizes {
				hdr.Files = append(hdr.Files, fileInfo{Name: fmt.Sprintf("f%d.pdf", i), Size: size})
			}
			hdrBytes, err := json.Marshal(hdr)
			require.NoError(t, err)

			var buf bytes.Buffer
			buf.Write(Magic[:])
			buf.WriteByte(frameRequest)
			binary.Write(&buf, binary.BigEndian, uint32(len(hdrBytes)))
			buf.Write(hdrBytes)

			_, err = ReadRequest(&buf, 0)
			assert.ErrorIs(t, err, ErrPayloadSize)
		})
	}
}

func TestReadRequestRejectsResponseFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, &types.Result{ID: "x", Status: types.StatusSuccess}))

	_, err := ReadRequest(&buf, 0)
	assert.ErrorIs(t, err, ErrBadFrameType)
}

func TestReadRequestPayloadLimit(t *testing.T) {
	req := sampleRequest()
	req.Files = []types.File{{Name: "big.pdf", Data: bytes.Repeat([]byte{0x42}, 1024)}}

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, req))

	_, err := ReadRequest(&buf, 512)
	assert.ErrorIs(t, err, ErrPayloadSize)

	buf.Reset()
	require.NoError(t, WriteRequest(&buf, req))
	_, err = ReadRequest(&buf, 2048)
	assert.NoError(t, err)
}
