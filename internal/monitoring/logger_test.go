package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer SetLogger(orig)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})
	Logf("sample %d dropped", 7)
	if captured != "sample 7 dropped" {
		t.Errorf("captured %q", captured)
	}

	SetLogger(nil)
	Logf("must not panic")
}
