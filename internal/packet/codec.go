package packet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"scenepack/internal/features"
	"scenepack/internal/services"
)

// Precision is the number of decimals kept for every serialized feature value.
const Precision = 6

type roundedVector []float32

func (v roundedVector) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	buf := make([]byte, 0, 2+len(v)*10)
	buf = append(buf, '[')
	for i, value := range v {
		f := float64(value)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("feature %d is not finite", i)
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, features.Round(f, Precision), 'f', -1, 64)
	}
	buf = append(buf, ']')
	return buf, nil
}

type wireRecord struct {
	FrameID  string        `json:"frameId"`
	Features roundedVector `json:"features"`
}

// Encode serializes records as one packet.
func Encode(records []features.FrameFeature) ([]byte, error) {
	wire := make([]wireRecord, len(records))
	for i, rec := range records {
		wire[i] = wireRecord{FrameID: rec.FrameID, Features: roundedVector(rec.Features)}
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode packet: %w", err)
	}
	return data, nil
}

type decodeRecord struct {
	FrameID  json.RawMessage `json:"frameId"`
	Features *[]*float64     `json:"features"`
}

// Decode parses one packet. Any malformed content yields an error wrapping
// services.ErrCorruptPacket and no records.
func Decode(data []byte) ([]features.FrameFeature, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []decodeRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, corrupt("invalid json: %v", err)
	}
	if raw == nil {
		return nil, corrupt("packet is not an array")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, corrupt("trailing data after packet array")
	}

	records := make([]features.FrameFeature, 0, len(raw))
	for i, rec := range raw {
		id, err := parseFrameID(rec.FrameID)
		if err != nil {
			return nil, corrupt("record %d: %v", i, err)
		}
		if rec.Features == nil {
			return nil, corrupt("record %d (%s): missing features", i, id)
		}
		values := make([]float32, len(*rec.Features))
		for j, v := range *rec.Features {
			if v == nil {
				return nil, corrupt("record %d (%s): null feature value at %d", i, id, j)
			}
			if math.Abs(*v) > math.MaxFloat32 {
				return nil, corrupt("record %d (%s): feature %d out of float32 range", i, id, j)
			}
			values[j] = float32(*v)
		}
		records = append(records, features.FrameFeature{FrameID: id, Features: values})
	}
	return records, nil
}

// parseFrameID accepts string ids and the integer ids some legacy shot
// packets carry.
func parseFrameID(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", errors.New("missing frameId")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("frameId: %v", err)
		}
		if strings.TrimSpace(s) == "" {
			return "", errors.New("empty frameId")
		}
		return s, nil
	}
	n, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return "", fmt.Errorf("frameId %s is neither a string nor an integer", trimmed)
	}
	return strconv.FormatInt(n, 10), nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrCorruptPacket, fmt.Sprintf(format, args...))
}
