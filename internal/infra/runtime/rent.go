// internal/infra/runtime/rent.go
package runtime

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	bin "github.com/gagliardetto/binary"
)

// AccountStorageOverhead はアカウント 1 つあたりに加算されるバイト数です。
const AccountStorageOverhead uint64 = 128

// Rent は rent sysvar の内容です。
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent は mainnet と同じ既定値です。
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
		BurnPercent:         50,
	}
}

// MinimumBalance は space バイトのアカウントが rent 免除になる最小残高を返します。
func (r Rent) MinimumBalance(space uint64) (uint64, error) {
	size, carry := bits.Add64(AccountStorageOverhead, space, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: space=%d", ErrRentOverflow, space)
	}
	hi, lo := bits.Mul64(size, r.LamportsPerByteYear)
	if hi != 0 {
		return 0, fmt.Errorf("%w: space=%d lamportsPerByteYear=%d", ErrRentOverflow, space, r.LamportsPerByteYear)
	}
	if math.IsNaN(r.ExemptionThreshold) || r.ExemptionThreshold < 0 {
		return 0, fmt.Errorf("%w: exemption threshold %v", ErrRentOverflow, r.ExemptionThreshold)
	}
	v := float64(lo) * r.ExemptionThreshold
	if v >= math.Exp2(64) {
		return 0, fmt.Errorf("%w: space=%d threshold=%v", ErrRentOverflow, space, r.ExemptionThreshold)
	}
	return uint64(v), nil
}

// encodeRent は sysvar アカウントのデータ (u64, f64, u8) を作ります。
func encodeRent(r Rent) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(r.LamportsPerByteYear, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteFloat64(r.ExemptionThreshold, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(r.BurnPercent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRent(data []byte) (Rent, error) {
	dec := bin.NewBinDecoder(data)
	var (
		r   Rent
		err error
	)
	if r.LamportsPerByteYear, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return Rent{}, fmt.Errorf("%w: rent: %v", ErrInvalidSysvar, err)
	}
	if r.ExemptionThreshold, err = dec.ReadFloat64(binary.LittleEndian); err != nil {
		return Rent{}, fmt.Errorf("%w: rent: %v", ErrInvalidSysvar, err)
	}
	if r.BurnPercent, err = dec.ReadUint8(); err != nil {
		return Rent{}, fmt.Errorf("%w: rent: %v", ErrInvalidSysvar, err)
	}
	return r, nil
}
