// Package fix defines the navigation snapshot record exported through the
// shared-memory channel. The layout is fixed and pointer-free so a record
// can be bulk-copied in and out of a mapped segment; producer and reader
// builds must agree on it byte for byte.
package fix

import (
	"math"

	"github.com/valyala/bytebufferpool"
)

// MaxSatellites caps the satellite visibility table carried in a snapshot.
const MaxSatellites = 64

// Fix modes, in the order a receiver reports them.
const (
	ModeNotSeen int32 = 0
	ModeNoFix   int32 = 1
	Mode2D      int32 = 2
	Mode3D      int32 = 3
)

// Fix status.
const (
	StatusNoFix int32 = 0
	StatusFix   int32 = 1
	StatusDGPS  int32 = 2
)

// Transport-origin marker values. Every record published through shared
// memory carries OriginSharedMemory so downstream formatting never treats
// it as a live-connection record.
const (
	OriginLive         int32 = 0
	OriginSharedMemory int32 = -1
)

// Satellite describes one visible satellite.
type Satellite struct {
	PRN       int32
	Used      int32
	Elevation float64
	Azimuth   float64
	SNR       float64
}

// DOP holds the dilution-of-precision estimates for a solution.
type DOP struct {
	XDOP float64
	YDOP float64
	PDOP float64
	HDOP float64
	VDOP float64
	TDOP float64
	GDOP float64
}

// Snapshot is the complete per-cycle navigation solution. All fields are
// fixed-size; the struct contains no pointers, slices or strings.
type Snapshot struct {
	Time      float64 // seconds since the Unix epoch, with fraction
	Latitude  float64 // degrees, positive north
	Longitude float64 // degrees, positive east
	AltHAE    float64 // height above ellipsoid, meters
	AltMSL    float64 // height above mean sea level, meters
	Speed     float64 // meters per second over ground
	Track     float64 // degrees from true north
	Climb     float64 // meters per second, positive up

	// Estimated errors, meters or seconds as appropriate.
	Epx float64
	Epy float64
	Epv float64
	Ept float64
	Eps float64

	Dop DOP

	Mode   int32
	Status int32
	Origin int32

	SatellitesVisible int32
	SatellitesUsed    int32
	_                 int32 // keep the satellite table 8-aligned

	Satellites [MaxSatellites]Satellite
}

// Valid reports whether the snapshot carries a usable position.
func (s *Snapshot) Valid() bool {
	return s.Mode >= Mode2D && !math.IsNaN(s.Latitude) && !math.IsNaN(s.Longitude)
}

func modeName(m int32) string {
	switch m {
	case ModeNoFix:
		return "no-fix"
	case Mode2D:
		return "2d"
	case Mode3D:
		return "3d"
	default:
		return "not-seen"
	}
}

// String renders a one-line summary of the solution.
func (s *Snapshot) String() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("fix mode=")
	_, _ = buf.WriteString(modeName(s.Mode))
	appendField(buf, " lat=", s.Latitude)
	appendField(buf, " lon=", s.Longitude)
	appendField(buf, " altMSL=", s.AltMSL)
	appendField(buf, " speed=", s.Speed)
	appendField(buf, " track=", s.Track)
	appendField(buf, " hdop=", s.Dop.HDOP)
	appendInt(buf, " sats=", s.SatellitesUsed)
	appendInt(buf, "/", s.SatellitesVisible)
	if s.Origin == OriginSharedMemory {
		_, _ = buf.WriteString(" (shm)")
	}
	return buf.String()
}

func appendField(buf *bytebufferpool.ByteBuffer, label string, v float64) {
	_, _ = buf.WriteString(label)
	if math.IsNaN(v) {
		_, _ = buf.WriteString("n/a")
		return
	}
	buf.B = appendFloat(buf.B, v)
}

func appendInt(buf *bytebufferpool.ByteBuffer, label string, v int32) {
	_, _ = buf.WriteString(label)
	buf.B = appendDecimal(buf.B, int64(v))
}

// appendFloat formats with three decimals, enough for meter-level display.
func appendFloat(b []byte, v float64) []byte {
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	scaled := int64(v*1000 + 0.5)
	b = appendDecimal(b, scaled/1000)
	b = append(b, '.')
	frac := scaled % 1000
	b = append(b, byte('0'+frac/100), byte('0'+(frac/10)%10), byte('0'+frac%10))
	return b
}

func appendDecimal(b []byte, v int64) []byte {
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return append(b, tmp[i:]...)
}
