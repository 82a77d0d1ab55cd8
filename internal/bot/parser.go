// parser.go — разбор текстовых команд с префиксами !, . и /.
package bot

import "strings"

// CommandParser разбирает команды. Исторически бот принимает и игровые
// команды с ! или ., и «телеграмные» /-команды.
type CommandParser struct {
	validPrefixes []string
	botName       string
}

// NewCommandParser создаёт парсер. botName нужен, чтобы в группах
// срезать суффикс /command@botname.
func NewCommandParser(botName string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
		botName:       botName,
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Возвращает false третьим значением, если текст — не команда.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if p.botName != "" {
		command = strings.TrimSuffix(command, "@"+strings.ToLower(p.botName))
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
