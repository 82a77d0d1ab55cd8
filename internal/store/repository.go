// repository.go — репозиторий пользователей поверх Store.
//
// Каждая операция — полный цикл: загрузить таблицу, изменить одну запись,
// сохранить таблицу. Мьютекс сериализует циклы внутри процесса, иначе два
// одновременных апдейта молча теряли бы запись одного из них. Гранулярность
// остаётся «вся таблица целиком».
package store

import (
	"context"
	"fmt"
	"sync"
)

// Repository — точка доступа всех фич к записям пользователей.
type Repository struct {
	mu    sync.Mutex
	store Store
}

// NewRepository создаёт репозиторий над произвольным бэкендом.
func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

// GetOrCreate возвращает запись пользователя. Новая запись создаётся с
// дефолтами и сразу сохраняется; у существующей дозаполняются отсутствующие
// поля (и таблица пересохраняется, только если что-то менялось).
func (r *Repository) GetOrCreate(ctx context.Context, userID string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, err := r.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("загрузка таблицы: %w", err)
	}

	rec, ok := table[userID]
	if !ok {
		rec = NewUserRecord()
		table[userID] = rec
		if err := r.store.SaveAll(ctx, table); err != nil {
			return nil, fmt.Errorf("сохранение таблицы: %w", err)
		}
	} else if rec.Normalize() {
		if err := r.store.SaveAll(ctx, table); err != nil {
			return nil, fmt.Errorf("сохранение таблицы: %w", err)
		}
	}

	return rec.Clone(), nil
}

// Update выполняет цикл чтение-изменение-запись над одной записью.
// fn получает запись (с уже применёнными дефолтами) и может её менять;
// ошибка из fn отменяет сохранение и state не меняется.
func (r *Repository) Update(ctx context.Context, userID string, fn func(rec *UserRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("загрузка таблицы: %w", err)
	}

	rec, ok := table[userID]
	if !ok {
		rec = NewUserRecord()
		table[userID] = rec
	} else {
		rec.Normalize()
	}

	if err := fn(rec); err != nil {
		return err
	}

	if err := r.store.SaveAll(ctx, table); err != nil {
		return fmt.Errorf("сохранение таблицы: %w", err)
	}
	return nil
}

// UpdateTwo атомарно (в рамках одного цикла) меняет две записи — нужно
// переводам и зачислениям в казну.
func (r *Repository) UpdateTwo(ctx context.Context, firstID, secondID string, fn func(first, second *UserRecord) error) error {
	if firstID == secondID {
		return r.Update(ctx, firstID, func(rec *UserRecord) error { return fn(rec, rec) })
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	table, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("загрузка таблицы: %w", err)
	}

	get := func(id string) *UserRecord {
		rec, ok := table[id]
		if !ok {
			rec = NewUserRecord()
			table[id] = rec
		} else {
			rec.Normalize()
		}
		return rec
	}

	if err := fn(get(firstID), get(secondID)); err != nil {
		return err
	}

	if err := r.store.SaveAll(ctx, table); err != nil {
		return fmt.Errorf("сохранение таблицы: %w", err)
	}
	return nil
}

// All возвращает копию всей таблицы (лидерборды).
func (r *Repository) All(ctx context.Context) (UserTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, err := r.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("загрузка таблицы: %w", err)
	}
	for _, rec := range table {
		rec.Normalize()
	}
	return table, nil
}
