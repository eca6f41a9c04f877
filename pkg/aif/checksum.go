package aif

import "encoding/binary"

// Checksum computes the AIF checksum of a whole file. The two bytes of the
// stored checksum field are read as zero.
func Checksum(data []byte) uint16 {
	var s Summer
	_, _ = s.Write(data)
	return s.Sum16()
}

// Stamp computes the checksum over data and patches it into the header.
// data must hold at least a full header.
func Stamp(data []byte) uint16 {
	sum := Checksum(data)
	binary.LittleEndian.PutUint16(data[ChecksumOffset:], sum)
	return sum
}

// Summer computes the AIF checksum incrementally. It tracks the absolute
// file position of every byte so it can skip the checksum field, which means
// it must see the file from offset 0.
type Summer struct {
	pos  int64
	sum1 uint8
	sum2 uint8
}

func (s *Summer) Write(p []byte) (int, error) {
	sum1, sum2 := s.sum1, s.sum2
	for i, b := range p {
		pos := s.pos + int64(i)
		if pos == ChecksumOffset || pos == ChecksumOffset+1 {
			b = 0
		}
		// uint8 arithmetic wraps mod 256
		sum1 += b
		sum2 += sum1
	}
	s.sum1, s.sum2 = sum1, sum2
	s.pos += int64(len(p))
	return len(p), nil
}

// Size returns the number of bytes summed so far.
func (s *Summer) Size() int64 {
	return s.pos
}

func (s *Summer) Sum16() uint16 {
	return uint16(s.sum2)<<8 | uint16(s.sum1)
}

func (s *Summer) Reset() {
	*s = Summer{}
}
