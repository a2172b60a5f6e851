package envvars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrideAll(t *testing.T) {
	v := Vars{"PATH": "/usr/bin", "HOME": "/home/ci"}
	v.OverrideAll(map[string]string{"HOME": "/tmp/build", "BUILD_ID": "42"})

	assert.Equal(t, "/usr/bin", v["PATH"])
	assert.Equal(t, "/tmp/build", v["HOME"])
	assert.Equal(t, "42", v["BUILD_ID"])
}

func TestExpand(t *testing.T) {
	v := Vars{"ANT_HOME": "/opt/ant", "JOB": "nightly"}

	assert.Equal(t, "/opt/ant/bin", v.Expand("${ANT_HOME}/bin"))
	assert.Equal(t, "/opt/ant/bin", v.Expand("$ANT_HOME/bin"))
	assert.Equal(t, "nightly-nightly", v.Expand("$JOB-${JOB}"))
}

func TestExpandKeepsUnknownReferences(t *testing.T) {
	v := Vars{}
	assert.Equal(t, "${NOT_SET}/lib", v.Expand("${NOT_SET}/lib"))
}

func TestEnvironIsSortedAndComplete(t *testing.T) {
	v := Vars{"B": "2", "A": "1", "C": "3"}
	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, v.Environ())
}

func TestCloneIsIndependent(t *testing.T) {
	v := Vars{"K": "original"}
	c := v.Clone()
	c["K"] = "changed"

	assert.Equal(t, "original", v["K"])
	assert.Equal(t, "changed", c["K"])
}
