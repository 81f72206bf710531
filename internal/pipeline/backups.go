package pipeline

import (
	"context"

	"github.com/vmunix/anisort/internal/events"
	"github.com/vmunix/anisort/internal/organizer"
)

// Backups lists the recorded operations of the backup store, oldest first.
func (p *Pipeline) Backups() ([]organizer.Operation, error) {
	org, err := p.organizer()
	if err != nil {
		return nil, err
	}
	return org.List(), nil
}

// PendingBackups lists operations left in CREATED by an interrupted run.
func (p *Pipeline) PendingBackups() ([]organizer.Operation, error) {
	org, err := p.organizer()
	if err != nil {
		return nil, err
	}
	return org.Pending(), nil
}

// Rollback undoes one recorded operation and restores its source file.
func (p *Pipeline) Rollback(ctx context.Context, id string) (*organizer.Operation, error) {
	org, err := p.organizer()
	if err != nil {
		return nil, err
	}
	op, err := org.Rollback(id)
	if err != nil {
		return nil, err
	}
	p.publish(ctx, &events.RollbackCompleted{
		BaseEvent:   events.NewBaseEvent(events.EventRollbackCompleted, ""),
		OperationID: op.ID,
		Source:      op.SourcePath,
		Destination: op.DestinationPath,
	})
	return op, nil
}

// Purge removes committed backups older than the configured retention.
func (p *Pipeline) Purge(ctx context.Context) (int, error) {
	org, err := p.organizer()
	if err != nil {
		return 0, err
	}
	n, err := org.Purge(p.cfg.Backup.Retention())
	if n > 0 {
		p.publish(ctx, &events.BackupsPurged{
			BaseEvent:     events.NewBaseEvent(events.EventBackupsPurged, ""),
			Count:         n,
			RetentionDays: p.cfg.Backup.RetentionDays,
		})
	}
	return n, err
}
