package fraudservice

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/domain"
)

const velocityWindow = 24 * time.Hour

// Thresholds and weights are illustrative defaults pending empirical
// calibration; they are injected so operators can tune them without a
// rebuild.
type Config struct {
	Timeout time.Duration

	MaxTxPerDay       int64
	MaxUniqueIPs      int64
	MaxUniqueDevs     int64
	WeightVelocity    float64
	WeightIPs         float64
	WeightDevices     float64
	WeightCountry     float64
	WeightAvgScore    float64
	MediumThreshold   float64
	HighThreshold     float64
	CriticalThreshold float64
}

func DefaultConfig(timeout time.Duration) Config {
	return Config{
		Timeout:           timeout,
		MaxTxPerDay:       20,
		MaxUniqueIPs:      3,
		MaxUniqueDevs:     2,
		WeightVelocity:    25,
		WeightIPs:         20,
		WeightDevices:     20,
		WeightCountry:     30,
		WeightAvgScore:    0.2,
		MediumThreshold:   25,
		HighThreshold:     50,
		CriticalThreshold: 75,
	}
}

// Service scores operations from static checks and trailing-24h velocity
// signals kept in redis. It has a hard latency budget and fails open to
// medium risk; it never blocks legitimate processing indefinitely.
type Service struct {
	rdb redis.Cmdable
	cfg Config
}

func New(rdb redis.Cmdable, cfg Config) *Service {
	return &Service{
		rdb: rdb,
		cfg: cfg,
	}
}

func txKey(userID int64) string    { return fmt.Sprintf("fraud:tx:%d", userID) }
func ipKey(userID int64) string    { return fmt.Sprintf("fraud:ip:%d", userID) }
func devKey(userID int64) string   { return fmt.Sprintf("fraud:dev:%d", userID) }
func scoreKey(userID int64) string { return fmt.Sprintf("fraud:score:%d", userID) }

// Score computes the fraud assessment for an operation within the configured
// budget. On timeout or redis failure it fails open to medium risk and emits
// an independently alertable log event.
func (s *Service) Score(ctx context.Context, in domain.FraudInput) domain.FraudAssessment {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	signal, err := s.collectSignal(ctx, in.UserID)
	if err != nil {
		zap.L().Error("fraud scorer failed open",
			zap.Int64("userID", in.UserID),
			zap.Bool("alert", true),
			zap.Error(err),
		)
		return domain.FraudAssessment{
			FraudScore: s.cfg.MediumThreshold,
			RiskLevel:  domain.RiskMedium,
		}
	}
	signal.CountryMismatch = in.DeclaredCountry != "" && in.IPCountry != "" && in.DeclaredCountry != in.IPCountry

	score := 0.0
	if signal.TxCount24h > s.cfg.MaxTxPerDay {
		score += s.cfg.WeightVelocity
	}
	if signal.UniqueIPs24h > s.cfg.MaxUniqueIPs {
		score += s.cfg.WeightIPs
	}
	if signal.UniqueDevices24h > s.cfg.MaxUniqueDevs {
		score += s.cfg.WeightDevices
	}
	if signal.CountryMismatch {
		score += s.cfg.WeightCountry
	}
	score += signal.AvgScore * s.cfg.WeightAvgScore

	return domain.FraudAssessment{
		FraudScore: score,
		RiskLevel:  s.band(score),
		Signal:     *signal,
	}
}

func (s *Service) band(score float64) domain.RiskLevel {
	switch {
	case score >= s.cfg.CriticalThreshold:
		return domain.RiskCritical
	case score >= s.cfg.HighThreshold:
		return domain.RiskHigh
	case score >= s.cfg.MediumThreshold:
		return domain.RiskMedium
	}
	return domain.RiskLow
}

func (s *Service) collectSignal(ctx context.Context, userID int64) (*domain.FraudSignal, error) {
	txCmd := s.rdb.Get(ctx, txKey(userID))
	ipCmd := s.rdb.SCard(ctx, ipKey(userID))
	devCmd := s.rdb.SCard(ctx, devKey(userID))
	scoreCmd := s.rdb.Get(ctx, scoreKey(userID))

	signal := &domain.FraudSignal{}

	txCount, err := txCmd.Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	signal.TxCount24h = txCount

	if signal.UniqueIPs24h, err = ipCmd.Result(); err != nil && err != redis.Nil {
		return nil, err
	}
	if signal.UniqueDevices24h, err = devCmd.Result(); err != nil && err != redis.Nil {
		return nil, err
	}

	scoreSum, err := scoreCmd.Float64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if txCount > 0 {
		signal.AvgScore = scoreSum / float64(txCount)
	}
	return signal, nil
}

// Record feeds the velocity sets after a processed operation. Failures are
// logged and swallowed: losing one velocity sample must not fail the ledger
// write that already committed.
func (s *Service) Record(ctx context.Context, in domain.FraudInput, assessment domain.FraudAssessment) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.rdb.Incr(ctx, txKey(in.UserID)).Err(); err != nil {
		zap.L().Warn("can't record fraud velocity", zap.Error(err))
		return
	}
	s.rdb.Expire(ctx, txKey(in.UserID), velocityWindow)

	if in.IP != "" {
		s.rdb.SAdd(ctx, ipKey(in.UserID), in.IP)
		s.rdb.Expire(ctx, ipKey(in.UserID), velocityWindow)
	}
	if in.DeviceFingerprint != "" {
		s.rdb.SAdd(ctx, devKey(in.UserID), in.DeviceFingerprint)
		s.rdb.Expire(ctx, devKey(in.UserID), velocityWindow)
	}
	s.rdb.IncrByFloat(ctx, scoreKey(in.UserID), assessment.FraudScore)
	s.rdb.Expire(ctx, scoreKey(in.UserID), velocityWindow)
}
