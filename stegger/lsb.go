package stegger

import (
	"github.com/pkg/errors"

	"github.com/mukadr/ghostfs/sampler"
)

// ErrInvalidK is returned when the LSB bit count is outside [1, sampler.Bits()].
var ErrInvalidK = errors.New("stegger: invalid k")

// lsbStegger packs k user bits into the low k bits of each sample. It does
// not own the sampler it wraps: Close is a no-op, the caller closes the
// sampler separately.
type lsbStegger struct {
	sampler  sampler.Sampler
	k        int
	capacity int64
}

// NewLSB returns a Stegger that packs k low bits per sample of s.
func NewLSB(s sampler.Sampler, k int) (Stegger, error) {
	if k < 1 || k > s.Bits() {
		return nil, errors.Wrapf(ErrInvalidK, "stegger: k=%d must be in [1,%d]", k, s.Bits())
	}
	return &lsbStegger{
		sampler:  s,
		k:        k,
		capacity: s.Count() * int64(k) / 8,
	}, nil
}

func (l *lsbStegger) Capacity() int64 {
	return l.capacity
}

func (l *lsbStegger) Close() error {
	return nil
}

func (l *lsbStegger) ReadAt(buf []byte, offset int64) error {
	size := int64(len(buf))
	k := int64(l.k)

	sampleBit := offset * 8 % k
	sampleIdx := offset * 8 / k

	if sampleIdx+(size*8/k) >= l.sampler.Count() {
		return errors.Wrap(ErrBadOffset, "lsb: read past end")
	}

	var sample uint32
	fetch := true
	for i := range buf {
		var b byte
		for wbit := uint(0); wbit < 8; wbit++ {
			if fetch {
				s, err := l.sampler.Read(sampleIdx)
				if err != nil {
					return err
				}
				sample = s
				fetch = false
			}
			if sample&(1<<uint(sampleBit)) != 0 {
				b |= 1 << wbit
			}
			sampleBit++
			if sampleBit == k {
				sampleBit = 0
				sampleIdx++
				fetch = true
			}
		}
		buf[i] = b
	}
	return nil
}

func (l *lsbStegger) WriteAt(buf []byte, offset int64) error {
	if len(buf) == 0 {
		return nil
	}

	size := int64(len(buf))
	k := int64(l.k)

	sampleBit := offset * 8 % k
	sampleIdx := offset * 8 / k

	if sampleIdx+(size*8/k) >= l.sampler.Count() {
		return errors.Wrap(ErrBadOffset, "lsb: write past end")
	}

	var sample uint32
	fetch := true
	bitInByte := 0
	bufIdx := 0

	for {
		if fetch {
			s, err := l.sampler.Read(sampleIdx)
			if err != nil {
				return err
			}
			sample = s
			fetch = false
		}

		if buf[bufIdx]&(1<<uint(bitInByte)) != 0 {
			sample |= 1 << uint(sampleBit)
		} else {
			sample &^= 1 << uint(sampleBit)
		}

		bitInByte++
		sampleBit++

		if sampleBit == k {
			sampleBit = 0
			if err := l.sampler.Write(sampleIdx, sample); err != nil {
				return err
			}
			sampleIdx++
			fetch = true
		}

		if bitInByte == 8 {
			bitInByte = 0
			if bufIdx == len(buf)-1 {
				break
			}
			bufIdx++
		}
	}

	if sampleBit > 0 {
		if err := l.sampler.Write(sampleIdx, sample); err != nil {
			return err
		}
	}

	return nil
}
