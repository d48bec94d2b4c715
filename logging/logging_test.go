package logging

import "testing"

func TestSubloggerNaming(t *testing.T) {
	logger := NewTestLogger(t)
	sub := logger.Sublogger("kinematics")
	sub.Debugf("refreshed %d frames", 3)
	subsub := sub.Sublogger("fk")
	subsub.Infof("ok")
	if got := subsub.(*zapLogger).name; got != "kinematics.fk" {
		t.Errorf("sublogger name = %q, want %q", got, "kinematics.fk")
	}
}
