package meta_test

import (
	"testing"

	"github.com/macrat/cfmon/internal/meta"
)

func TestUserAgent(t *testing.T) {
	orig := meta.Version
	meta.Version = "1.2.3"
	defer func() {
		meta.Version = orig
	}()

	if ua := meta.UserAgent(); ua != "cfmon/1.2.3 (+https://github.com/macrat/cfmon)" {
		t.Errorf("unexpected user agent: %q", ua)
	}
}
