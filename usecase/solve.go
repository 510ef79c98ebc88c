package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	domainSolve "github.com/AzielCF/az-cube/domains/solve"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
	"github.com/AzielCF/az-cube/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultHistoryLimit = 1000

// --- Persistence Model ---

type solveModel struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement;column:seq"`
	ID        string    `gorm:"uniqueIndex;size:36;column:id"`
	Time      float64   `gorm:"column:time;not null"`
	Scramble  string    `gorm:"column:scramble"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	DNF       bool      `gorm:"column:dnf"`
	Plus2     bool      `gorm:"column:plus2"`
}

func (solveModel) TableName() string {
	return "solves"
}

func (m solveModel) toRecord() timerDomain.SolveRecord {
	return timerDomain.SolveRecord{
		ID:        m.ID,
		Time:      m.Time,
		Scramble:  m.Scramble,
		Timestamp: m.Timestamp,
		DNF:       m.DNF,
		Plus2:     m.Plus2,
	}
}

type solveService struct {
	db    *gorm.DB
	limit int
}

func NewSolveService(db *gorm.DB, limit int) domainSolve.ISolveUsecase {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s := &solveService{db: db, limit: limit}
	if db != nil {
		if err := s.InitSchema(context.Background()); err != nil {
			logrus.WithError(err).Error("[SOLVE] failed to init schema")
		}
	} else {
		logrus.Error("[SOLVE] GORM DB is nil, service will be disabled")
	}
	return s
}

func (s *solveService) InitSchema(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).AutoMigrate(&solveModel{})
}

func (s *solveService) ensureDB() error {
	if s.db == nil {
		return pkgError.InternalServerError("solve storage is not initialized")
	}
	return nil
}

// Submit adds a solve, or updates it when the id is already known (a penalty
// correction). The oldest solves beyond the limit are dropped.
func (s *solveService) Submit(ctx context.Context, request domainSolve.SubmitRequest) (timerDomain.SolveRecord, error) {
	if err := s.ensureDB(); err != nil {
		return timerDomain.SolveRecord{}, err
	}
	if err := validations.ValidateSubmitSolve(ctx, request); err != nil {
		return timerDomain.SolveRecord{}, err
	}

	model := solveModel{
		ID:       request.ID,
		Time:     request.Time,
		Scramble: request.Scramble,
		DNF:      request.DNF,
		Plus2:    request.Plus2,
	}
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if request.Timestamp != nil && !request.Timestamp.IsZero() {
		model.Timestamp = request.Timestamp.UTC()
	} else {
		model.Timestamp = time.Now().UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"time", "scramble", "dnf", "plus2"}),
		}).Create(&model).Error; err != nil {
			return err
		}
		return s.trim(tx)
	})
	if err != nil {
		return timerDomain.SolveRecord{}, fmt.Errorf("failed to store solve: %w", err)
	}

	return model.toRecord(), nil
}

func (s *solveService) trim(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&solveModel{}).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - s.limit
	if excess <= 0 {
		return nil
	}

	var seqs []uint
	if err := tx.Model(&solveModel{}).Order("seq ASC").Limit(excess).Pluck("seq", &seqs).Error; err != nil {
		return err
	}
	logrus.Debugf("[SOLVE] trimming %d solves over the limit of %d", len(seqs), s.limit)
	return tx.Where("seq IN ?", seqs).Delete(&solveModel{}).Error
}

func (s *solveService) models(ctx context.Context) ([]solveModel, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var models []solveModel
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

// List returns every solve, oldest first.
func (s *solveService) List(ctx context.Context) ([]timerDomain.SolveRecord, error) {
	models, err := s.models(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]timerDomain.SolveRecord, len(models))
	for i, m := range models {
		out[i] = m.toRecord()
	}
	return out, nil
}

func (s *solveService) DeleteAt(ctx context.Context, index int) error {
	models, err := s.models(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(models) {
		return pkgError.NotFoundError(fmt.Sprintf("solve %d not found", index))
	}
	return s.db.WithContext(ctx).Where("seq = ?", models[index].Seq).Delete(&solveModel{}).Error
}

func (s *solveService) DeleteMany(ctx context.Context, indices []int) (int, error) {
	if err := validations.ValidateDeleteMany(ctx, domainSolve.DeleteManyRequest{Indices: indices}); err != nil {
		return 0, err
	}
	models, err := s.models(ctx)
	if err != nil {
		return 0, err
	}

	var seqs []uint
	for _, i := range indices {
		if i >= 0 && i < len(models) && !slices.Contains(seqs, models[i].Seq) {
			seqs = append(seqs, models[i].Seq)
		}
	}
	if len(seqs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("seq IN ?", seqs).Delete(&solveModel{})
	return int(res.RowsAffected), res.Error
}

func (s *solveService) DeleteAll(ctx context.Context) (int, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&solveModel{})
	return int(res.RowsAffected), res.Error
}

func (s *solveService) Stats(ctx context.Context) (domainSolve.Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return domainSolve.Stats{}, err
	}
	return computeHistoryStats(records), nil
}

// computeHistoryStats works on chronological records.
func computeHistoryStats(records []timerDomain.SolveRecord) domainSolve.Stats {
	newestFirst := slices.Clone(records)
	slices.Reverse(newestFirst)

	st := domainSolve.Stats{
		TotalSolves: len(records),
		BestSingle:  timerDomain.Best(records),
		WorstSingle: timerDomain.Worst(records),
		SessionMean: timerDomain.SessionMean(records),
		Mo3:         timerDomain.MeanOf(newestFirst, 3),
		Chart:       make([]domainSolve.ChartPoint, 0, len(records)),
		DNFAverages: []string{},
	}
	for _, avg := range []struct {
		name string
		n    int
		dest **float64
	}{
		{"ao5", 5, &st.Ao5},
		{"ao12", 12, &st.Ao12},
		{"ao50", 50, &st.Ao50},
		{"ao100", 100, &st.Ao100},
		{"ao1000", 1000, &st.Ao1000},
	} {
		v, dnf := timerDomain.AverageOfWCA(newestFirst, avg.n)
		*avg.dest = v
		if dnf {
			st.DNFAverages = append(st.DNFAverages, avg.name)
		}
	}

	var sub10, sub15, sub20 int
	for i, r := range records {
		if r.DNF {
			st.DNFCount++
		}
		point := domainSolve.ChartPoint{Index: i + 1}
		if t, ok := r.Effective(); ok {
			point.Time = &t
			switch {
			case t < 10:
				sub10++
				fallthrough
			case t < 15:
				sub15++
				fallthrough
			case t < 20:
				sub20++
			}
		}
		// records[:i+1] reversed is the window ending at solve i
		upTo := newestFirst[len(records)-1-i:]
		// DNF averages are gaps like DNF singles
		point.Ao5, _ = timerDomain.AverageOfWCA(upTo, 5)
		point.Ao12, _ = timerDomain.AverageOfWCA(upTo, 12)
		st.Chart = append(st.Chart, point)
	}

	if n := len(records); n > 0 {
		st.Sub10 = percent(sub10, n)
		st.Sub15 = percent(sub15, n)
		st.Sub20 = percent(sub20, n)
	}
	return st
}

func percent(part, total int) float64 {
	return float64(part) * 100 / float64(total)
}
