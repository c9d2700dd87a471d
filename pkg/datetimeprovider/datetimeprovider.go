package datetimeprovider

import (
	"strconv"
	"time"
)

type Provider struct {
	now func() time.Time
}

func New() *Provider {
	return &Provider{now: time.Now}
}

func (provider *Provider) Date() string {
	return provider.now().Format(time.DateOnly)
}

func (provider *Provider) Hour() string {
	return strconv.Itoa(provider.now().Hour())
}
