package winpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitListSemicolonSeparated(t *testing.T) {
	assert.Equal(t, []string{"C:\\a", "D:\\b"}, SplitList(`C:\a;D:\b`))
}

func TestSplitListDriveAwareColonSeparated(t *testing.T) {
	assert.Equal(t, []string{`C:\one`, `C:\two`}, SplitList(`C:\one:C:\two`))
}

func TestSplitListPlainColonSeparated(t *testing.T) {
	assert.Equal(t, []string{"/usr/include", "/usr/local/include"}, SplitList("/usr/include:/usr/local/include"))
}

func TestSplitListEmpty(t *testing.T) {
	assert.Nil(t, SplitList(""))
}

func TestJoinListUsesPlatformSeparator(t *testing.T) {
	assert.Equal(t, `C:\a;C:\b`, JoinList([]string{`C:\a`, `C:\b`}, true))
	assert.Equal(t, "/a:/b", JoinList([]string{"/a", "/b"}, false))
}
