package memory

import (
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	risk     *riskRepository
	auditLog *auditLogRepository
	staging  *stagingRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:     newRiskRepository(),
		auditLog: newAuditLogRepository(),
		staging:  newStagingRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) AuditLog() interfaces.AuditLogRepository {
	return m.auditLog
}

func (m *Memory) Staging() interfaces.StagingRepository {
	return m.staging
}

func (m *Memory) Close() error {
	return nil
}
