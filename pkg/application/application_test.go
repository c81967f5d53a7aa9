package application_test

import (
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/pkg/application"
)

type greeter struct{ name string }

type stubController struct{ key string }

func (c *stubController) Register(*mux.Router) {}
func (c *stubController) Key() string          { return c.key }

func TestApplication_Services(t *testing.T) {
	app := application.New(&application.ApplicationOptions{})
	app.RegisterServices(&greeter{name: "host"})

	svc := app.Service(greeter{}).(*greeter)
	assert.Equal(t, "host", svc.name)
	assert.NotNil(t, app.EventPublisher())

	type missing struct{}
	require.Panics(t, func() { app.Service(missing{}) })
}

func TestApplication_ControllersSortedAndDeduplicated(t *testing.T) {
	app := application.New(&application.ApplicationOptions{})
	app.RegisterControllers(&stubController{key: "b"}, &stubController{key: "a"}, &stubController{key: "b"})

	controllers := app.Controllers()
	require.Len(t, controllers, 2)
	assert.Equal(t, "a", controllers[0].Key())
	assert.Equal(t, "b", controllers[1].Key())
}
