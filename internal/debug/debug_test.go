package debug

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// saveAndRestoreState saves the debug package state and returns a cleanup function
func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalRuntime := runtimeEnabled
	originalOutput := debugOutput
	originalFile := debugFile
	return func() {
		EnableDebug = originalDebug
		runtimeEnabled = originalRuntime
		debugOutput = originalOutput
		debugFile = originalFile
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	os.Unsetenv("FINSPECT_DEBUG")

	EnableDebug = "false"
	runtimeEnabled = false
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	// Invalid build flag value defaults to disabled
	EnableDebug = "invalid"
	assert.False(t, IsDebugEnabled())
}

func TestSetEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	os.Unsetenv("FINSPECT_DEBUG")

	EnableDebug = "false"
	SetEnabled(true)
	assert.True(t, IsDebugEnabled())

	SetEnabled(false)
	assert.False(t, IsDebugEnabled())
}

func TestLog(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	Log("TEST", "Hello %s", "World")

	output := buf.String()
	assert.Contains(t, output, "[DEBUG:TEST]")
	assert.Contains(t, output, "Hello World")
}

func TestLogHelpers(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "true"

	tests := []struct {
		name    string
		logFunc func(string, ...interface{})
		prefix  string
	}{
		{"LogScan", LogScan, "[DEBUG:SCAN]"},
		{"LogClassify", LogClassify, "[DEBUG:CLASSIFY]"},
		{"LogAnalyze", LogAnalyze, "[DEBUG:ANALYZE]"},
		{"LogBatch", LogBatch, "[DEBUG:BATCH]"},
		{"LogWatch", LogWatch, "[DEBUG:WATCH]"},
		{"LogConfig", LogConfig, "[DEBUG:CONFIG]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetDebugOutput(&buf)

			tt.logFunc("message %d", 42)

			output := buf.String()
			assert.Contains(t, output, tt.prefix)
			assert.Contains(t, output, "message 42")
		})
	}
}

func TestConcurrentLogging(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			Log("CONCURRENT", "Message from goroutine %d", id)
			LogScan("Scan from goroutine %d", id)
			LogBatch("Batch from goroutine %d", id)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestNoOutputWithNilWriter(t *testing.T) {
	defer saveAndRestoreState()()

	SetDebugOutput(nil)
	EnableDebug = "true"

	// None of these should panic with a nil writer
	Printf("test %s", "message")
	Println("test message")
	Log("TEST", "test %s", "message")
	LogScan("test %s", "message")
	LogAnalyze("test %s", "message")
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()

	logPath, err := InitDebugLogFile()
	assert.NoError(t, err)
	assert.NotEmpty(t, logPath)

	_, err = os.Stat(logPath)
	assert.NoError(t, err)

	EnableDebug = "true"
	Printf("Test log message\n")

	err = CloseDebugLog()
	assert.NoError(t, err)

	content, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "Test log message")

	os.Remove(logPath)
}
