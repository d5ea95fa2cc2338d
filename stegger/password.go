package stegger

import (
	"github.com/pkg/errors"

	"github.com/mukadr/ghostfs/internal/digest"
	"github.com/mukadr/ghostfs/sampler"
)

// scheduleLen is the number of (group, bit) pairs the MD5-derived schedule
// covers: 4 groups of 8 bits each.
const scheduleLen = 32

// passwordStegger packs exactly one user bit per sample, choosing which of
// the sample's 4 low bits carries it from a schedule derived from
// MD5(password). It does not own the sampler it wraps.
type passwordStegger struct {
	sampler     sampler.Sampler
	initialBits [scheduleLen]int
	capacity    int64
}

// NewPassword returns a Stegger whose bit-placement schedule is derived
// from MD5(password).
func NewPassword(s sampler.Sampler, password string) Stegger {
	d := digest.Sum([]byte(password))

	var initial [scheduleLen]int
	for i := 0; i < scheduleLen; i++ {
		if i%2 == 0 {
			initial[i] = int(d[i/2]&0xF) % 4
		} else {
			initial[i] = int(d[i/2]>>4) % 4
		}
	}

	return &passwordStegger{
		sampler:     s,
		initialBits: initial,
		capacity:    s.Count() / 8,
	}
}

func (p *passwordStegger) Capacity() int64 {
	return p.capacity
}

func (p *passwordStegger) Close() error {
	return nil
}

// bitAt returns which of the 4 low bits, in [0,4), of the sample at
// offset carries user bit index bit (0..7) when that bit is stored there.
func (p *passwordStegger) bitAt(offset int64, bit int) uint {
	add := offset / 4
	group := int(offset % 4)
	idx := group*8 + bit
	return uint((int64(p.initialBits[idx]) + add) % 4)
}

func (p *passwordStegger) ReadAt(buf []byte, offset int64) error {
	size := int64(len(buf))
	sampleOffset := offset * 8

	if sampleOffset+size*8 >= p.sampler.Count() {
		return errors.Wrap(ErrBadOffset, "password: read past end")
	}

	for i := range buf {
		var b byte
		for bit := 0; bit < 8; bit++ {
			sample, err := p.sampler.Read(sampleOffset)
			if err != nil {
				return err
			}
			tbit := p.bitAt(sampleOffset, bit)
			if sample&(1<<tbit) != 0 {
				b |= 1 << uint(bit)
			}
			sampleOffset++
		}
		buf[i] = b
	}
	return nil
}

func (p *passwordStegger) WriteAt(buf []byte, offset int64) error {
	if len(buf) == 0 {
		return nil
	}

	size := int64(len(buf))
	sampleOffset := offset * 8

	if sampleOffset+size*8 >= p.sampler.Count() {
		return errors.Wrap(ErrBadOffset, "password: write past end")
	}

	bit := 0
	bufIdx := 0
	for {
		sample, err := p.sampler.Read(sampleOffset)
		if err != nil {
			return err
		}
		tbit := p.bitAt(sampleOffset, bit)
		if buf[bufIdx]&(1<<uint(bit)) != 0 {
			sample |= 1 << tbit
		} else {
			sample &^= 1 << tbit
		}
		if err := p.sampler.Write(sampleOffset, sample); err != nil {
			return err
		}

		bit++
		sampleOffset++

		if bit == 8 {
			bit = 0
			if bufIdx == len(buf)-1 {
				break
			}
			bufIdx++
		}
	}
	return nil
}
