// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневный снапшот таблицы
// пользователей и истории лотереи в каталог бэкапов.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/store"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron      *cron.Cron
	repo      *store.Repository
	history   *store.LotteryHistory
	backupDir string
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(repo *store.Repository, history *store.LotteryHistory, backupDir string) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		repo:      repo,
		history:   history,
		backupDir: backupDir,
	}
}

// Start запускает все фоновые задачи. spec — cron-выражение бэкапа
// (BACKUP_CRON).
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		log.Info("[CRON] Снапшот данных")
		if err := s.Backup(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка снапшота")
		}
	})
	if err != nil {
		return fmt.Errorf("некорректное cron-выражение %q: %w", spec, err)
	}

	s.cron.Start()
	log.WithField("backup_cron", spec).Info("Планировщик задач запущен (Europe/Moscow)")
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// Backup выгружает таблицу пользователей и счётчики лотереи в два
// JSON-файла с меткой времени в имени. Снапшот идёт через Repository,
// поэтому работает для любого бэкенда, не только файлового.
func (s *Scheduler) Backup(ctx context.Context) error {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог бэкапов: %w", err)
	}
	stamp := time.Now().Format("2006-01-02_150405")

	table, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("чтение таблицы пользователей: %w", err)
	}
	if err := writeSnapshot(filepath.Join(s.backupDir, "users_"+stamp+".json"), table); err != nil {
		return err
	}

	counts, err := s.history.Counts()
	if err != nil {
		return fmt.Errorf("чтение истории лотереи: %w", err)
	}
	if err := writeSnapshot(filepath.Join(s.backupDir, "lottery_"+stamp+".json"), counts); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"users": len(table),
		"dir":   s.backupDir,
	}).Info("Снапшот сохранён")
	return nil
}

// writeSnapshot пишет значение атомарно: во временный файл и rename.
func writeSnapshot(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация снапшота: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("запись снапшота: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("переименование снапшота: %w", err)
	}
	return nil
}
