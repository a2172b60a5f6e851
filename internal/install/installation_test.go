package install

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fugi/antrun/internal/envvars"
	"github.com/fugi/antrun/internal/testutil"
)

func TestNewLaundersTrailingSeparator(t *testing.T) {
	assert.Equal(t, "/opt/ant", New("a", "/opt/ant/").Home)
	assert.Equal(t, `C:\tools\ant`, New("a", `C:\tools\ant\`).Home)
	assert.Equal(t, "/opt/ant", New("a", "/opt/ant").Home)
	// Root alone is not a trailing separator.
	assert.Equal(t, "/", New("a", "/").Home)
}

func TestForEnvironmentExpandsHome(t *testing.T) {
	inst := New("default", "${TOOLS}/ant")
	env := envvars.Vars{"TOOLS": "/opt"}

	specialized := inst.ForEnvironment(env)
	assert.Equal(t, "/opt/ant", specialized.Home)
	// The original is untouched.
	assert.Equal(t, "${TOOLS}/ant", inst.Home)
}

func TestForEnvironmentLaundersExpandedHome(t *testing.T) {
	inst := New("default", "${TOOLS}")
	env := envvars.Vars{"TOOLS": "/opt/ant/"}

	assert.Equal(t, "/opt/ant", inst.ForEnvironment(env).Home)
}

func TestForNodeAppliesOverride(t *testing.T) {
	inst := New("default", "/opt/ant", WithNodeHomes(map[string]string{
		"fake-windows": `D:\ant\`,
	}))

	onWindows := inst.ForNode(testutil.NewWindowsNode())
	assert.Equal(t, `D:\ant`, onWindows.Home)

	onUnix := inst.ForNode(testutil.NewUnixNode())
	assert.Equal(t, "/opt/ant", onUnix.Home)
	assert.Equal(t, "/opt/ant", inst.Home)
}

func TestExecutablePerPlatform(t *testing.T) {
	inst := New("default", "/opt/ant")

	unixNode := testutil.NewUnixNode("/opt/ant/bin/ant")
	exe, ok := inst.Executable(unixNode)
	assert.True(t, ok)
	assert.Equal(t, "/opt/ant/bin/ant", exe)

	windowsNode := testutil.NewWindowsNode()
	exe, ok = inst.Executable(windowsNode)
	assert.False(t, ok)
	assert.Equal(t, "/opt/ant/bin/ant.bat", exe)
}

func TestBuildEnvVarsSetsAntHome(t *testing.T) {
	env := envvars.Vars{}
	New("default", "/opt/ant").BuildEnvVars(env)
	assert.Equal(t, "/opt/ant", env["ANT_HOME"])
}
