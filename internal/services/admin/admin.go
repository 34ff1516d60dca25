// Package admin реализует диспетчер административных действий модерации:
// закрытый набор типизированных операций над объявлениями, купонами
// и пробными периодами.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Action — тег административного действия.
type Action string

// Закрытый набор поддерживаемых действий. Неизвестный тег отклоняется
// до любого обращения к хранилищу.
const (
	ActionDeleteAnnouncement          Action = "delete_announcement"
	ActionDeleteAnnouncementsBulk     Action = "delete_announcements_bulk"
	ActionDeleteCoupon                Action = "delete_coupon"
	ActionDeleteCouponsBulk           Action = "delete_coupons_bulk"
	ActionPurgeTrials                 Action = "purge_trials"
	ActionDeleteUserAnnouncementsBulk Action = "delete_user_announcements_bulk"
)

var knownActions = []Action{
	ActionDeleteAnnouncement,
	ActionDeleteAnnouncementsBulk,
	ActionDeleteCoupon,
	ActionDeleteCouponsBulk,
	ActionPurgeTrials,
	ActionDeleteUserAnnouncementsBulk,
}

// Ошибки уровня сервиса, по которым обработчик выбирает HTTP статус.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrEmptyIDs      = errors.New("ids list is empty")
)

// Repository описывает операции хранилища, доступные диспетчеру.
// Каскадные удаления выполняются внутри одной транзакции на стороне хранилища.
type Repository interface {
	DeleteAnnouncement(ctx context.Context, id int) (int64, error)
	DeleteAnnouncementsBulk(ctx context.Context, ids []int) (int64, error)
	DeleteCoupon(ctx context.Context, id int) (int64, error)
	DeleteCouponsBulk(ctx context.Context, ids []int) (int64, error)
	PurgeTrials(ctx context.Context) (int64, error)
	DeleteUserAnnouncementsBulk(ctx context.Context, ids []int) (int64, error)
}

// Service — диспетчер административных действий.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр диспетчера.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Request — разобранное административное действие.
type Request struct {
	Action Action
	ID     int
	IDs    []int
}

// Execute выполняет действие и возвращает число удалённых строк.
// Пустой список идентификаторов для списочных действий отклоняется
// до какой-либо мутации хранилища.
func (s *Service) Execute(ctx context.Context, req Request) (int64, error) {
	const op = "admin.Execute"

	if !slices.Contains(knownActions, req.Action) {
		return 0, ErrUnknownAction
	}

	var (
		affected int64
		err      error
	)
	switch req.Action {
	case ActionDeleteAnnouncement:
		if req.ID <= 0 {
			return 0, ErrEmptyIDs
		}
		affected, err = s.repo.DeleteAnnouncement(ctx, req.ID)
	case ActionDeleteAnnouncementsBulk:
		if len(req.IDs) == 0 {
			return 0, ErrEmptyIDs
		}
		affected, err = s.repo.DeleteAnnouncementsBulk(ctx, req.IDs)
	case ActionDeleteCoupon:
		if req.ID <= 0 {
			return 0, ErrEmptyIDs
		}
		affected, err = s.repo.DeleteCoupon(ctx, req.ID)
	case ActionDeleteCouponsBulk:
		if len(req.IDs) == 0 {
			return 0, ErrEmptyIDs
		}
		affected, err = s.repo.DeleteCouponsBulk(ctx, req.IDs)
	case ActionPurgeTrials:
		affected, err = s.repo.PurgeTrials(ctx)
	case ActionDeleteUserAnnouncementsBulk:
		if len(req.IDs) == 0 {
			return 0, ErrEmptyIDs
		}
		affected, err = s.repo.DeleteUserAnnouncementsBulk(ctx, req.IDs)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("admin action executed",
		slog.String("action", string(req.Action)),
		slog.Int64("affected", affected))
	return affected, nil
}
