package worldgen

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// encodeV1ForTest hand-builds a minimal legacy version-1 buffer (inline
// per-road point arrays, no shared points buffer) to exercise the
// backward-compatible decoder. rec's heightmap/settlements are carried
// through as-is; a single synthetic two-point road is appended.
func encodeV1ForTest(t *testing.T, rec *SaveRecord) []byte {
	t.Helper()
	buf := &bytes.Buffer{}

	write := func(v interface{}) {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("encodeV1ForTest: %v", err)
		}
	}

	write(uint32(saveVersion1))
	write(rec.Seed)
	write(rec.Width)
	write(rec.Height)
	write(rec.UseShading)
	write(rec.EnableErosion)
	write(rec.CreatedAt)

	write(uint32(len(rec.Heightmap)))
	write(rec.Heightmap)

	write(uint32(len(rec.Settlements)))
	for _, s := range rec.Settlements {
		write(s)
	}

	write(uint32(1)) // one road
	write(uint32(0)) // aIndex
	write(uint32(1)) // bIndex
	write(float32(0))
	write(float32(0))
	write(float32(10))
	write(float32(0))
	write(float32(10))
	write(uint32(2)) // pointsCount
	write([]float32{0, 0, 10, 0})

	write(uint32(rec.TotalDays))
	write(uint8(rec.TimeSpeed))
	write(false) // no player placement

	return buf.Bytes()
}

func buildTestWorld(t *testing.T, seed uint32) *World {
	t.Helper()
	w, err := Build(Config{Seed: seed, Width: 48, Height: 48, EnableErosion: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return w
}

func TestSaveRoundTrip(t *testing.T) {
	w := buildTestWorld(t, 17)
	w.Tick(1)
	w.Tick(5001)

	rec := w.SaveRecord(1690000000000)
	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	reloaded, err := LoadFromRecord(decoded)
	if err != nil {
		t.Fatalf("LoadFromRecord: %v", err)
	}

	if reloaded.Seed != w.Seed || reloaded.Width != w.Width || reloaded.Height != w.Height {
		t.Fatalf("metadata mismatch: got seed=%d w=%d h=%d", reloaded.Seed, reloaded.Width, reloaded.Height)
	}
	if len(reloaded.Heightmap) != len(w.Heightmap) {
		t.Fatalf("heightmap length mismatch: got %d want %d", len(reloaded.Heightmap), len(w.Heightmap))
	}
	for i := range w.Heightmap {
		// float32 round trip loses precision below ~1e-6
		diff := reloaded.Heightmap[i] - w.Heightmap[i]
		if diff < -1e-6 || diff > 1e-6 {
			t.Fatalf("heightmap cell %d drifted: got %v want %v", i, reloaded.Heightmap[i], w.Heightmap[i])
		}
	}
	if len(reloaded.Settlements) != len(w.Settlements) {
		t.Fatalf("settlement count mismatch: got %d want %d", len(reloaded.Settlements), len(w.Settlements))
	}
	if len(reloaded.Roads) != len(w.Roads) {
		t.Fatalf("road count mismatch: got %d want %d", len(reloaded.Roads), len(w.Roads))
	}
	if reloaded.Time.TotalDays != w.Time.TotalDays {
		t.Fatalf("time mismatch: got %d want %d", reloaded.Time.TotalDays, w.Time.TotalDays)
	}
}

func TestEncodeAlwaysWritesVersion2(t *testing.T) {
	w := buildTestWorld(t, 2)
	rec := w.SaveRecord(0)
	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Version != saveVersion2 {
		t.Fatalf("expected version 2, got %d", decoded.Version)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data := []byte{99, 0, 0, 0}
	if _, err := Decode(data); err != ErrUnknownSaveVersion {
		t.Fatalf("expected ErrUnknownSaveVersion, got %v", err)
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	data := []byte{2, 0, 0, 0, 1}
	if _, err := Decode(data); err != ErrTruncatedBuffer {
		t.Fatalf("expected ErrTruncatedBuffer, got %v", err)
	}
}

func TestDecodeV1InlineRoadsCompat(t *testing.T) {
	// hand-build a minimal version-1 buffer: header, four-cell heightmap,
	// empty settlements, one road with two inline points, footer.
	w := buildTestWorld(t, 4)
	rec := w.SaveRecord(123)
	rec.Heightmap = rec.Heightmap[:4] // keep it small
	rec.Settlements = nil
	rec.RoadMetadata = nil
	rec.PointsData = nil

	buf := encodeV1ForTest(t, rec)

	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode v1: %v", err)
	}
	if decoded.Version != saveVersion1 {
		t.Fatalf("expected version 1, got %d", decoded.Version)
	}
	if len(decoded.RoadMetadata) != 1 {
		t.Fatalf("expected 1 road, got %d", len(decoded.RoadMetadata))
	}
	if decoded.RoadMetadata[0].PointsCount != 2 {
		t.Fatalf("expected 2 points, got %d", decoded.RoadMetadata[0].PointsCount)
	}
}

func TestEncodeDecodeWithPlayerPlacement(t *testing.T) {
	w := buildTestWorld(t, 9)
	rec := w.SaveRecord(42)
	rec.Player = PlayerPlacement{Present: true, X: 12.5, Y: 30.25, HasSettlement: true, CurrentSettlementIndex: 3}

	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !decoded.Player.Present || decoded.Player.X != 12.5 || decoded.Player.Y != 30.25 {
		t.Fatalf("player placement mismatch: %+v", decoded.Player)
	}
	if !decoded.Player.HasSettlement || decoded.Player.CurrentSettlementIndex != 3 {
		t.Fatalf("player settlement mismatch: %+v", decoded.Player)
	}
}
