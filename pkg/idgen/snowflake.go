package idgen

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// 账号生成器：64位雪花ID（41位毫秒时间戳 | 10位机器ID | 12位序列号），
// 再转成大写36进制加上 ACC 前缀，同一生成器内不会重复。

const (
	epoch          = int64(1704067200000) // 起始时间戳（2024-01-01 00:00:00 UTC）
	workerIDBits   = 10                   // 机器ID位数
	sequenceBits   = 12                   // 序列号位数
	maxWorkerID    = -1 ^ (-1 << workerIDBits)
	maxSequence    = -1 ^ (-1 << sequenceBits)
	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

// AccountNumberPrefix 账号前缀
const AccountNumberPrefix = "ACC"

// Snowflake 雪花算法ID生成器
type Snowflake struct {
	mu        sync.Mutex
	timestamp int64
	workerID  int64
	sequence  int64
	now       func() int64 // 毫秒时钟
}

// NewSnowflake 创建指定机器ID的生成器
func NewSnowflake(workerID int64) (*Snowflake, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, errors.Errorf("workerID 必须在 0-%d 之间", maxWorkerID)
	}
	return &Snowflake{
		workerID: workerID,
		now:      func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// MustNewSnowflake 与 NewSnowflake 相同，workerID 非法时 panic，用于固定的默认机器ID
func MustNewSnowflake(workerID int64) *Snowflake {
	s, err := NewSnowflake(workerID)
	if err != nil {
		panic(err)
	}
	return s
}

// Generate 生成ID
func (s *Snowflake) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if now <= s.timestamp {
		// 同一毫秒内（或时钟回拨），沿用上次时间戳，序列号递增
		now = s.timestamp
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// 序列号用完，逻辑上借用下一毫秒，不在锁内空转等待时钟追上
			now = s.timestamp + 1
		}
	} else {
		// 不同毫秒，序列号重置
		s.sequence = 0
	}

	s.timestamp = now

	return ((now - epoch) << timestampShift) |
		(s.workerID << workerIDShift) |
		s.sequence
}

// AccountNumber 生成账号
// 格式：ACC + 雪花ID的36进制大写形式
// 例如：ACC1A2B3C4D5E6
func (s *Snowflake) AccountNumber() string {
	return AccountNumberPrefix + strings.ToUpper(strconv.FormatInt(s.Generate(), 36))
}
