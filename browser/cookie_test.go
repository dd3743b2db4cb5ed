package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookie(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		want   int
	}{
		{name: "two pairs", cookie: "JSESSIONID=abc123; route=node1", want: 2},
		{name: "trailing semicolon", cookie: "token=xyz;", want: 1},
		{name: "value contains equals", cookie: "sig=a=b=c", want: 1},
		{name: "malformed pair skipped", cookie: "JSESSIONID=abc; garbage", want: 1},
		{name: "empty", cookie: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := parseCookie(tt.cookie, "https://admission.bit.edu.cn/f/article/lnfs")
			assert.NoError(t, err)
			assert.Len(t, params, tt.want)
			for _, p := range params {
				assert.Equal(t, "admission.bit.edu.cn", p.Domain)
			}
		})
	}
}

func TestParseCookie_ValueKept(t *testing.T) {
	params, err := parseCookie("sig=a=b=c", "https://zsb.nankai.edu.cn/lqfs")
	assert.NoError(t, err)
	assert.Equal(t, "sig", params[0].Name)
	assert.Equal(t, "a=b=c", params[0].Value)
}
