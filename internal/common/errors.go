// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки экономики (монеты, переводы, банк)
var (
	// ErrInsufficientBalance — недостаточно монет в кошельке
	ErrInsufficientBalance = errors.New("недостаточно монет на счёте")
	// ErrInsufficientBank — недостаточно монет в банке
	ErrInsufficientBank = errors.New("недостаточно монет в банке")
	// ErrSelfTransfer — попытка перевести монеты самому себе
	ErrSelfTransfer = errors.New("нельзя переводить монеты самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrOnCooldown — ежедневная награда ещё на кулдауне
	ErrOnCooldown = errors.New("награда ещё недоступна")
)

// Ошибки предметов и магазина
var (
	// ErrItemNotFound — предмет отсутствует в каталоге или инвентаре
	ErrItemNotFound = errors.New("предмет не найден")
	// ErrItemWorthless — предмет без ценности, продать нельзя
	ErrItemWorthless = errors.New("предмет ничего не стоит")
	// ErrNotEnoughItems — в инвентаре меньше предметов, чем запрошено
	ErrNotEnoughItems = errors.New("недостаточно предметов в инвентаре")
	// ErrAlreadyOwned — роль уже куплена
	ErrAlreadyOwned = errors.New("роль уже есть у пользователя")
	// ErrEmptyRewardPool — в каталоге нет предметов нужной редкости
	ErrEmptyRewardPool = errors.New("пул наград пуст")
)

// Ошибки игр
var (
	// ErrInvalidBet — ставка не положительная
	ErrInvalidBet = errors.New("ставка должна быть положительной")
	// ErrInvalidChoice — неизвестный вариант (орёл/решка и т.п.)
	ErrInvalidChoice = errors.New("неизвестный вариант")
	// ErrGameFinished — игровая сессия уже завершена
	ErrGameFinished = errors.New("игра уже завершена")
	// ErrNotYourGame — кнопку нажал не владелец игры
	ErrNotYourGame = errors.New("это не ваша игра")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
