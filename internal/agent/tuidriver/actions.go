package tuidriver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"agentictest/internal/pty"
	"agentictest/internal/scenario"
	"agentictest/internal/tui"
)

func currentPlatform() tui.Platform {
	switch runtime.GOOS {
	case "windows":
		return tui.PlatformWindows
	case "darwin":
		return tui.PlatformDarwin
	default:
		return tui.PlatformLinux
	}
}

func (d *Driver) doSpawn(step scenario.Step, sr *scenario.StepResult) error {
	size := pty.Size{}
	if step.Extra != nil {
		if c, err := strconv.Atoi(step.Extra["cols"]); err == nil {
			size.Cols = uint16(c)
		}
		if r, err := strconv.Atoi(step.Extra["rows"]); err == nil {
			size.Rows = uint16(r)
		}
	}

	var name string
	var args []string
	if step.Target != "" {
		parts := strings.Fields(step.Target)
		name, args = parts[0], parts[1:]
	}

	sess, err := d.sessions.CreateSession(name, args, pty.CreateOptions{Size: size})
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.lastID = sess.ID
	d.navs[sess.ID] = tui.ResetContext()
	d.mu.Unlock()

	sr.Status = scenario.StatusPassed
	sr.ActualResult = sess.ID
	return nil
}

func (d *Driver) doSendInput(target string, step scenario.Step, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("send_input requires a target session")
	}
	tokens := tui.Tokenize(step.Value, currentPlatform())
	for _, tok := range tokens {
		if err := d.sessions.Write(target, []byte(tok.Bytes)); err != nil {
			return err
		}
	}
	sr.Status = scenario.StatusPassed
	return nil
}

func (d *Driver) stabilizeFn(target string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return tui.Stabilize(ctx, 5*time.Second, func() (int, error) {
			return d.sessions.BufferLen(target)
		})
	}
}

func (d *Driver) doNavigateMenu(ctx context.Context, target string, step scenario.Step, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("navigate_menu requires a target session")
	}
	d.mu.Lock()
	nav, ok := d.navs[target]
	if !ok {
		nav = tui.ResetContext()
		d.navs[target] = nav
	}
	d.mu.Unlock()

	path := strings.Split(step.Value, "/")
	navigator := &tui.Navigator{
		Stabilize:  d.stabilizeFn(target),
		LatestText: func() (string, error) { return d.sessions.LatestText(target) },
		PressArrow: func(down bool) error {
			if down {
				return d.sessions.Write(target, []byte("\x1b[B"))
			}
			return d.sessions.Write(target, []byte("\x1b[A"))
		},
		PressEnter: func() error { return d.sessions.Write(target, []byte("\r")) },
	}

	if err := navigator.NavigateTo(ctx, nav, path); err != nil {
		return err
	}
	sr.Status = scenario.StatusPassed
	return nil
}

func (d *Driver) doValidateOutput(target string, step scenario.Step, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("validate_output requires a target session")
	}
	text, err := d.sessions.LatestText(target)
	if err != nil {
		return err
	}
	ok, verr := tui.Validate(text, false, step.Expected)
	if verr != nil {
		return verr
	}
	sr.ActualResult = text
	if ok {
		sr.Status = scenario.StatusPassed
	} else {
		sr.Status = scenario.StatusFailed
		sr.Error = "output did not match expected value"
	}
	return nil
}

func (d *Driver) doValidateColors(target string, step scenario.Step, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("validate_colors requires a target session")
	}
	outputs, err := d.sessions.Output(target)
	if err != nil {
		return err
	}
	want, _ := step.Expected.(string)
	found := false
	for _, o := range outputs {
		if strings.Contains(o.Raw, "\x1b[") && strings.Contains(o.Text, want) {
			found = true
			break
		}
	}
	sr.ActualResult = found
	if found {
		sr.Status = scenario.StatusPassed
	} else {
		sr.Status = scenario.StatusFailed
		sr.Error = "no styled span matched expected formatting"
	}
	return nil
}

func (d *Driver) doCaptureOutput(target string, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("capture_output requires a target session")
	}
	text, err := d.sessions.LatestText(target)
	if err != nil {
		return err
	}
	sr.Status = scenario.StatusPassed
	sr.ActualResult = text
	return nil
}

func (d *Driver) doWaitForOutput(ctx context.Context, target string, step scenario.Step, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("wait_for_output requires a target session")
	}
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	err := tui.WaitForPattern(ctx, timeout, step.Value, func() (string, error) {
		return d.sessions.LatestText(target)
	})
	if err != nil {
		sr.Status = scenario.StatusFailed
		sr.Error = err.Error()
		return nil
	}
	sr.Status = scenario.StatusPassed
	return nil
}

func (d *Driver) doResize(target string, step scenario.Step, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("resize_terminal requires a target session")
	}
	cols, _ := strconv.Atoi(step.Extra["cols"])
	rows, _ := strconv.Atoi(step.Extra["rows"])
	if err := d.sessions.Resize(target, pty.Size{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		return err
	}
	sr.Status = scenario.StatusPassed
	return nil
}

func (d *Driver) doKillSession(target string, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("kill_session requires a target session")
	}
	if err := d.sessions.DestroySession(target); err != nil {
		return err
	}
	sr.Status = scenario.StatusPassed
	return nil
}

func (d *Driver) doWait(ctx context.Context, step scenario.Step) {
	wait := step.Timeout
	if wait <= 0 {
		wait = 1 * time.Second
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
