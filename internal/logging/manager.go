package logging

import (
	"fmt"
	"sync"
)

// Компоненты генератора, у которых есть собственный логгер
const (
	ComponentDungeon     = "dungeon"
	ComponentPathfinding = "pathfinding"
	ComponentGraph       = "graph"
	ComponentServer      = "server"
	ComponentStorage     = "storage"
)

var components = []string{
	ComponentDungeon, ComponentPathfinding, ComponentGraph, ComponentServer, ComponentStorage,
}

// Components возвращает известные компоненты
func Components() []string {
	return append([]string(nil), components...)
}

// IsComponent true, если у компонента есть собственный логгер
func IsComponent(name string) bool {
	for _, c := range components {
		if c == name {
			return true
		}
	}
	return false
}

type levels struct {
	console, file LogLevel
}

// LoggerManager хранит логгеры компонентов и заданные для них уровни.
// Уровень можно задать до первого обращения к логгеру: он применится при создании.
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	levels  map[string]levels
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

func newLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers: make(map[string]*Logger),
		levels:  make(map[string]levels),
	}
}

// GetLogger возвращает логгер компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger, nil
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger for %s: %w", component, err)
	}
	if lv, ok := lm.levels[component]; ok {
		logger.SetLevels(lv.console, lv.file)
	}

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер или консольный запасной, если файл не открылся
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		fallback := &Logger{
			component:       component,
			consoleLogger:   current().consoleLogger,
			minConsoleLevel: INFO,
			minFileLevel:    ERROR,
		}
		fallback.Warn("⚠️ Файловый лог недоступен: %v", err)
		return fallback
	}
	return logger
}

// SetLogLevel задаёт уровни компонента. Неизвестный компонент: ошибка.
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	if !IsComponent(component) {
		return fmt.Errorf("unknown log component %q", component)
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.levels[component] = levels{console: consoleLevel, file: fileLevel}
	if logger, exists := lm.loggers[component]; exists {
		logger.SetLevels(consoleLevel, fileLevel)
	}
	return nil
}

// Configure выставляет уровень консоли level глобальному логгеру и всем
// компонентам, затем применяет overrides (компонент -> имя уровня).
// В файл компоненты пишут начиная с DEBUG.
func (lm *LoggerManager) Configure(level LogLevel, overrides map[string]string) error {
	SetDefaultLevel(level)
	for _, c := range components {
		if err := lm.SetLogLevel(c, level, DEBUG); err != nil {
			return err
		}
	}

	for component, name := range overrides {
		lv, err := ParseLevel(name)
		if err != nil {
			return fmt.Errorf("%s: %w", component, err)
		}
		if err := lm.SetLogLevel(component, lv, DEBUG); err != nil {
			return err
		}
	}
	return nil
}

// CloseAll закрывает файлы всех логгеров. Заданные уровни сохраняются.
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close logger for %s: %w", component, err)
		}
	}

	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// GetComponentLogger логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetDungeonLogger() *Logger {
	return GetComponentLogger(ComponentDungeon)
}

func GetPathfindingLogger() *Logger {
	return GetComponentLogger(ComponentPathfinding)
}

func GetGraphLogger() *Logger {
	return GetComponentLogger(ComponentGraph)
}

func GetServerLogger() *Logger {
	return GetComponentLogger(ComponentServer)
}

func GetStorageLogger() *Logger {
	return GetComponentLogger(ComponentStorage)
}
