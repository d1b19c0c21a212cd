package worldgen

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	saveVersion1 = 1
	saveVersion2 = 2
)

// SettlementRecord is the on-disk form of a Settlement: a plain record,
// no renderer proxies.
type SettlementRecord struct {
	X, Y           float32
	Elevation      float32
	Suitability    float32
	IslandID       int32
	IslandArea     uint32
	RoadDegree     uint16
	SecondHopReach uint16
	CityScore      float32
	Category       uint8
}

// RoadMetadata is one road's fixed-size metadata entry in the version-2
// flat-buffer scheme; PointsOffset counts point *pairs* from the start
// of the record's shared PointsData buffer.
type RoadMetadata struct {
	X1, Y1, X2, Y2 float32
	Length         float32
	AIndex, BIndex uint32
	PointsOffset   uint32
	PointsCount    uint32
}

// PlayerPlacement is the optional player position carried in a save.
type PlayerPlacement struct {
	Present                bool
	X, Y                   float32
	HasSettlement          bool
	CurrentSettlementIndex uint32
}

// SaveRecord is the version-2 save format described in spec.md §6: a
// raw heightmap byte buffer, plain settlement records, a flat road
// points buffer plus per-road metadata, time state, and an optional
// player placement.
type SaveRecord struct {
	Version       uint32
	Seed          uint32
	Width, Height uint32
	UseShading    bool
	EnableErosion bool
	CreatedAt     int64

	Heightmap []float32

	Settlements []SettlementRecord

	RoadMetadata []RoadMetadata
	PointsData   []float32 // contiguous xy pairs

	TotalDays int
	TimeSpeed int

	Player PlayerPlacement
}

// SaveRecord materialises the world into the version-2 save format.
// createdAt is supplied by the caller (ms since epoch): the core never
// reads the wall clock itself.
func (w *World) SaveRecord(createdAt int64) *SaveRecord {
	rec := &SaveRecord{
		Version:       saveVersion2,
		Seed:          w.Seed,
		Width:         uint32(w.Width),
		Height:        uint32(w.Height),
		UseShading:    w.UseShading,
		EnableErosion: w.EnableErosion,
		CreatedAt:     createdAt,
		Heightmap:     make([]float32, len(w.Heightmap)),
		Settlements:   make([]SettlementRecord, len(w.Settlements)),
		TotalDays:     w.Time.TotalDays,
		TimeSpeed:     w.Time.Speed,
	}

	for i, v := range w.Heightmap {
		rec.Heightmap[i] = float32(v)
	}

	for i, s := range w.Settlements {
		rec.Settlements[i] = SettlementRecord{
			X: float32(s.X), Y: float32(s.Y),
			Elevation:      float32(s.Elevation),
			Suitability:    float32(s.Suitability),
			IslandID:       int32(s.IslandID),
			IslandArea:     uint32(s.IslandArea),
			RoadDegree:     uint16(s.RoadDegree),
			SecondHopReach: uint16(s.SecondHopReach),
			CityScore:      float32(s.CityScore),
			Category:       uint8(s.Category),
		}
	}

	offset := uint32(0)
	for _, r := range w.Roads {
		rec.RoadMetadata = append(rec.RoadMetadata, RoadMetadata{
			X1: float32(r.AX), Y1: float32(r.AY),
			X2: float32(r.BX), Y2: float32(r.BY),
			Length:       float32(r.Length),
			AIndex:       uint32(r.A),
			BIndex:       uint32(r.B),
			PointsOffset: offset,
			PointsCount:  uint32(len(r.Points)),
		})
		for _, p := range r.Points {
			rec.PointsData = append(rec.PointsData, float32(p[0]), float32(p[1]))
		}
		offset += uint32(len(r.Points))
	}

	return rec
}

// LoadFromRecord rebuilds a World's materialised data directly from a
// save record, without re-running the generation pipeline.
func LoadFromRecord(rec *SaveRecord) (*World, error) {
	heightmap := make([]float64, len(rec.Heightmap))
	for i, v := range rec.Heightmap {
		heightmap[i] = float64(v)
	}

	islandIDs, islandAreas, maxArea := LabelIslands(heightmap, int(rec.Width), int(rec.Height), CoastThreshold)

	settlements := make([]Settlement, len(rec.Settlements))
	for i, s := range rec.Settlements {
		settlements[i] = Settlement{
			X: float64(s.X), Y: float64(s.Y),
			Elevation:      float64(s.Elevation),
			Suitability:    float64(s.Suitability),
			IslandID:       int(s.IslandID),
			IslandArea:     int(s.IslandArea),
			RoadDegree:     int(s.RoadDegree),
			SecondHopReach: int(s.SecondHopReach),
			CityScore:      float64(s.CityScore),
			Category:       Category(s.Category),
		}
	}

	roads := make([]RoadSegment, len(rec.RoadMetadata))
	for i, m := range rec.RoadMetadata {
		points := make([][2]float64, m.PointsCount)
		for j := uint32(0); j < m.PointsCount; j++ {
			idx := (m.PointsOffset + j) * 2
			if int(idx)+1 >= len(rec.PointsData) {
				return nil, ErrMetadataInconsistent
			}
			points[j] = [2]float64{float64(rec.PointsData[idx]), float64(rec.PointsData[idx+1])}
		}
		roads[i] = RoadSegment{
			A: int(m.AIndex), B: int(m.BIndex),
			AX: float64(m.X1), AY: float64(m.Y1),
			BX: float64(m.X2), BY: float64(m.Y2),
			Length: float64(m.Length),
			Points: points,
		}
	}

	positions := make([][2]float64, len(settlements))
	for i, s := range settlements {
		positions[i] = [2]float64{s.X, s.Y}
	}
	graph := BuildRoadGraph(positions, roads)

	ts := NewTimeService()
	ts.TotalDays = rec.TotalDays
	if err := ts.SetSpeed(rec.TimeSpeed); err != nil {
		return nil, err
	}

	return &World{
		Seed:          rec.Seed,
		Width:         int(rec.Width),
		Height:        int(rec.Height),
		UseShading:    rec.UseShading,
		EnableErosion: rec.EnableErosion,
		Heightmap:     heightmap,
		IslandIDs:     islandIDs,
		IslandAreas:   islandAreas,
		MaxIsland:     maxArea,
		Settlements:   settlements,
		Roads:         roads,
		Graph:         graph,
		Time:          ts,
	}, nil
}

// Encode serialises a save record to bytes. Writers always emit
// version 2.
func Encode(rec *SaveRecord) ([]byte, error) {
	buf := &bytes.Buffer{}

	fields := []interface{}{
		uint32(saveVersion2),
		rec.Seed, rec.Width, rec.Height,
		rec.UseShading, rec.EnableErosion,
		rec.CreatedAt,
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}

	if err := writeFloat32Slice(buf, rec.Heightmap); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(rec.Settlements))); err != nil {
		return nil, err
	}
	for _, s := range rec.Settlements {
		if err := binary.Write(buf, binary.LittleEndian, s); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(rec.RoadMetadata))); err != nil {
		return nil, err
	}
	for _, m := range rec.RoadMetadata {
		if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
			return nil, err
		}
	}

	if err := writeFloat32Slice(buf, rec.PointsData); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(rec.TotalDays)); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint8(rec.TimeSpeed)); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, rec.Player.Present); err != nil {
		return nil, err
	}
	if rec.Player.Present {
		if err := binary.Write(buf, binary.LittleEndian, rec.Player.X); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, rec.Player.Y); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, rec.Player.HasSettlement); err != nil {
			return nil, err
		}
		if rec.Player.HasSettlement {
			if err := binary.Write(buf, binary.LittleEndian, rec.Player.CurrentSettlementIndex); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

func writeFloat32Slice(buf *bytes.Buffer, data []float32) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, data)
}

// Decode reads a save record, dispatching on its version tag. Version
// 1 (inline road arrays) is accepted for backward compatibility;
// version 2 (flat points buffer) is the current format.
func Decode(data []byte) (*SaveRecord, error) {
	r := bytes.NewReader(data)

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, ErrTruncatedBuffer
	}

	switch version {
	case saveVersion1:
		return decodeV1(r)
	case saveVersion2:
		return decodeV2(r)
	default:
		return nil, ErrUnknownSaveVersion
	}
}

func decodeV2(r *bytes.Reader) (*SaveRecord, error) {
	rec := &SaveRecord{Version: saveVersion2}
	if err := readHeader(r, rec); err != nil {
		return nil, err
	}

	var err error
	if rec.Heightmap, err = readFloat32Slice(r); err != nil {
		return nil, err
	}

	if rec.Settlements, err = readSettlements(r); err != nil {
		return nil, err
	}

	var metaCount uint32
	if err := binary.Read(r, binary.LittleEndian, &metaCount); err != nil {
		return nil, ErrTruncatedBuffer
	}
	rec.RoadMetadata = make([]RoadMetadata, metaCount)
	for i := range rec.RoadMetadata {
		if err := binary.Read(r, binary.LittleEndian, &rec.RoadMetadata[i]); err != nil {
			return nil, ErrTruncatedBuffer
		}
	}

	if rec.PointsData, err = readFloat32Slice(r); err != nil {
		return nil, err
	}

	if err := readFooter(r, rec); err != nil {
		return nil, err
	}

	if err := validateMetadata(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// decodeV1 reads the legacy inline-roads format: each road carries its
// own point list immediately after its fixed fields, with no shared
// points buffer. It is materialised into the same in-memory shape as
// v2 by synthesising a contiguous PointsData buffer and offsets.
func decodeV1(r *bytes.Reader) (*SaveRecord, error) {
	rec := &SaveRecord{Version: saveVersion1}
	if err := readHeader(r, rec); err != nil {
		return nil, err
	}

	var err error
	if rec.Heightmap, err = readFloat32Slice(r); err != nil {
		return nil, err
	}
	if rec.Settlements, err = readSettlements(r); err != nil {
		return nil, err
	}

	var roadCount uint32
	if err := binary.Read(r, binary.LittleEndian, &roadCount); err != nil {
		return nil, ErrTruncatedBuffer
	}

	offset := uint32(0)
	for i := uint32(0); i < roadCount; i++ {
		var aIdx, bIdx uint32
		var x1, y1, x2, y2, length float32
		for _, f := range []interface{}{&aIdx, &bIdx, &x1, &y1, &x2, &y2, &length} {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, ErrTruncatedBuffer
			}
		}

		var pointsCount uint32
		if err := binary.Read(r, binary.LittleEndian, &pointsCount); err != nil {
			return nil, ErrTruncatedBuffer
		}
		pts := make([]float32, pointsCount*2)
		if err := binary.Read(r, binary.LittleEndian, pts); err != nil {
			return nil, ErrTruncatedBuffer
		}

		rec.RoadMetadata = append(rec.RoadMetadata, RoadMetadata{
			X1: x1, Y1: y1, X2: x2, Y2: y2, Length: length,
			AIndex: aIdx, BIndex: bIdx,
			PointsOffset: offset, PointsCount: pointsCount,
		})
		rec.PointsData = append(rec.PointsData, pts...)
		offset += pointsCount
	}

	if err := readFooter(r, rec); err != nil {
		return nil, err
	}

	if err := validateMetadata(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func readHeader(r *bytes.Reader, rec *SaveRecord) error {
	fields := []interface{}{&rec.Seed, &rec.Width, &rec.Height, &rec.UseShading, &rec.EnableErosion, &rec.CreatedAt}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return ErrTruncatedBuffer
		}
	}
	return nil
}

func readFooter(r *bytes.Reader, rec *SaveRecord) error {
	var totalDays uint32
	var speed uint8
	if err := binary.Read(r, binary.LittleEndian, &totalDays); err != nil {
		return ErrTruncatedBuffer
	}
	if err := binary.Read(r, binary.LittleEndian, &speed); err != nil {
		return ErrTruncatedBuffer
	}
	rec.TotalDays = int(totalDays)
	rec.TimeSpeed = int(speed)

	if err := binary.Read(r, binary.LittleEndian, &rec.Player.Present); err != nil {
		if err == io.EOF {
			return nil
		}
		return ErrTruncatedBuffer
	}
	if !rec.Player.Present {
		return nil
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Player.X); err != nil {
		return ErrTruncatedBuffer
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Player.Y); err != nil {
		return ErrTruncatedBuffer
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Player.HasSettlement); err != nil {
		return ErrTruncatedBuffer
	}
	if rec.Player.HasSettlement {
		if err := binary.Read(r, binary.LittleEndian, &rec.Player.CurrentSettlementIndex); err != nil {
			return ErrTruncatedBuffer
		}
	}
	return nil
}

func readFloat32Slice(r *bytes.Reader) ([]float32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, ErrTruncatedBuffer
	}
	data := make([]float32, n)
	if n > 0 {
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, ErrTruncatedBuffer
		}
	}
	return data, nil
}

func readSettlements(r *bytes.Reader) ([]SettlementRecord, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, ErrTruncatedBuffer
	}
	recs := make([]SettlementRecord, n)
	for i := range recs {
		if err := binary.Read(r, binary.LittleEndian, &recs[i]); err != nil {
			return nil, ErrTruncatedBuffer
		}
	}
	return recs, nil
}

func validateMetadata(rec *SaveRecord) error {
	for _, m := range rec.RoadMetadata {
		end := (m.PointsOffset + m.PointsCount) * 2
		if int(end) > len(rec.PointsData) {
			return ErrMetadataInconsistent
		}
	}
	return nil
}
