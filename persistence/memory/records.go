package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/persistence"
)

// memoryRecordStore keeps call records in process. It backs local runs without postgres.
type memoryRecordStore struct {
	mu             sync.RWMutex
	reports        map[string]model.Report
	calls          map[string]model.Call
	summaries      map[string]model.Summary
	transcriptions map[string]model.Transcription
	usage          map[string]model.Usage
	usageByCall    []model.UsageByCall
	usageByReport  []model.UsageByReport
}

var _ persistence.RecordStore = new(memoryRecordStore)

func NewMemoryRecordStore() *memoryRecordStore {
	return &memoryRecordStore{
		reports:        map[string]model.Report{},
		calls:          map[string]model.Call{},
		summaries:      map[string]model.Summary{},
		transcriptions: map[string]model.Transcription{},
		usage:          map[string]model.Usage{},
	}
}

func (m *memoryRecordStore) CreateReport(ctx context.Context, r model.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createReport(r), nil
}

func (m *memoryRecordStore) createReport(r model.Report) string {
	r.Id = "report_" + uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.reports[r.Id] = r
	return r.Id
}

func (m *memoryRecordStore) CreateCall(ctx context.Context, c model.Call) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCall(c), nil
}

func (m *memoryRecordStore) createCall(c model.Call) string {
	c.Id = "call_" + uuid.NewString()
	m.calls[c.Id] = c
	return c.Id
}

func (m *memoryRecordStore) CreateSummary(ctx context.Context, s model.Summary) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Id = "summary_" + uuid.NewString()
	m.summaries[s.Id] = s
	return s.Id, nil
}

func (m *memoryRecordStore) CreateTranscription(ctx context.Context, t model.Transcription) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Id = "transcription_" + uuid.NewString()
	m.transcriptions[t.Id] = t
	return t.Id, nil
}

func (m *memoryRecordStore) CreateUsage(ctx context.Context, u model.Usage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addUsage(u)
	return nil
}

func (m *memoryRecordStore) addUsage(u model.Usage) {
	cur := m.usage[u.BillingMonth]
	cur.BillingMonth = u.BillingMonth
	cur.TotalCost += u.TotalCost
	cur.TotalUsage += u.TotalUsage
	m.usage[u.BillingMonth] = cur
}

func (m *memoryRecordStore) IngestReport(ctx context.Context, req model.IngestRequest) (string, error) {
	month, err := model.BillingMonth(req.Report.Date)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reportId := m.createReport(model.Report{
		Date:          req.Report.Date,
		Manager:       req.Report.Manager,
		Status:        req.Report.Status,
		Summary:       req.Report.Summary,
		TotalCost:     req.Report.TotalCost,
		TotalDuration: req.Report.TotalDuration,
	})
	var cost, duration float64
	for _, c := range req.Calls {
		callId := m.createCall(model.Call{
			ReportId:    reportId,
			CalledAbout: c.CalledAbout,
			ManagerName: c.ManagerName,
			Status:      c.Status,
			Timestamp:   c.Timestamp,
			Duration:    c.Duration,
			Cost:        c.Cost,
		})
		if c.Transcription != nil {
			tid := "transcription_" + uuid.NewString()
			m.transcriptions[tid] = model.Transcription{Id: tid, CallId: callId, FullText: c.Transcription.FullText, Timestamp: c.Transcription.Timestamp}
		}
		if c.Summary != nil {
			sid := "summary_" + uuid.NewString()
			m.summaries[sid] = model.Summary{Id: sid, CallId: callId, SummaryText: c.Summary.SummaryText}
		}
		m.usageByCall = append(m.usageByCall, model.UsageByCall{
			BillingMonth: month, CallId: callId, ReportId: reportId, Cost: c.Cost, Duration: c.Duration, Timestamp: c.Timestamp,
		})
		cost += c.Cost
		duration += c.Duration
	}
	m.usageByReport = append(m.usageByReport, model.UsageByReport{
		BillingMonth: month, ReportId: reportId, CallCount: len(req.Calls), Cost: cost, Duration: duration,
		Manager: req.Report.Manager, ReportDate: req.Report.Date,
	})
	m.addUsage(model.Usage{BillingMonth: month, TotalCost: cost, TotalUsage: duration})
	return reportId, nil
}

func (m *memoryRecordStore) SetReportPDF(ctx context.Context, id string, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return persistence.NotFoundError{Kind: "report", Id: id}
	}
	r.PdfLink = link
	m.reports[id] = r
	return nil
}

func values[T any](in map[string]T, less func(a, b T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (m *memoryRecordStore) ListReports(ctx context.Context) ([]model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return values(m.reports, func(a, b model.Report) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (m *memoryRecordStore) ListCalls(ctx context.Context) ([]model.Call, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return values(m.calls, func(a, b model.Call) bool { return a.Timestamp > b.Timestamp }), nil
}

func (m *memoryRecordStore) ListSummaries(ctx context.Context) ([]model.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return values(m.summaries, func(a, b model.Summary) bool { return a.Id < b.Id }), nil
}

func (m *memoryRecordStore) ListTranscriptions(ctx context.Context) ([]model.Transcription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return values(m.transcriptions, func(a, b model.Transcription) bool { return a.Timestamp > b.Timestamp }), nil
}

func (m *memoryRecordStore) ListUsage(ctx context.Context) ([]model.Usage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return values(m.usage, func(a, b model.Usage) bool { return a.BillingMonth > b.BillingMonth }), nil
}

func (m *memoryRecordStore) ListUsageByReport(ctx context.Context, month string) ([]model.UsageByReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.UsageByReport{}
	for _, u := range m.usageByReport {
		if u.BillingMonth == month {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryRecordStore) ListUsageByCall(ctx context.Context, month string) ([]model.UsageByCall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.UsageByCall{}
	for _, u := range m.usageByCall {
		if u.BillingMonth == month {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryRecordStore) GetReport(ctx context.Context, id string) (*model.ReportDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "report", Id: id}
	}
	calls := []model.Call{}
	for _, c := range m.calls {
		if c.ReportId == id {
			calls = append(calls, c)
		}
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].Timestamp < calls[j].Timestamp })
	ids := make([]string, 0, len(calls))
	for _, c := range calls {
		ids = append(ids, c.Id)
	}
	return &model.ReportDetail{Report: r, CallIds: ids}, nil
}

func (m *memoryRecordStore) GetCall(ctx context.Context, id string) (*model.CallDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.calls[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "call", Id: id}
	}
	detail := &model.CallDetail{Call: c}
	for _, s := range m.summaries {
		if s.CallId == id {
			s := s
			detail.Summary = &s
			break
		}
	}
	for _, t := range m.transcriptions {
		if t.CallId == id {
			t := t
			detail.Transcription = &t
			break
		}
	}
	return detail, nil
}

func (m *memoryRecordStore) GetSummary(ctx context.Context, id string) (*model.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "summary", Id: id}
	}
	return &s, nil
}

func (m *memoryRecordStore) GetTranscription(ctx context.Context, id string) (*model.Transcription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transcriptions[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "transcription", Id: id}
	}
	return &t, nil
}

func (m *memoryRecordStore) GetUsage(ctx context.Context, month string) (*model.Usage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.usage[month]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "usage", Id: month}
	}
	return &u, nil
}
