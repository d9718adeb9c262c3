package clidriver

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"agentictest/internal/process"
	"agentictest/internal/scenario"
)

func (d *Driver) setEnv(step scenario.Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kv := step.Target + "=" + step.Value
	d.env = append(d.env, kv)
}

func (d *Driver) setDir(step scenario.Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dir = step.Target
}

func (d *Driver) environ() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.env) == 0 {
		return nil
	}
	out := append([]string(nil), os.Environ()...)
	return append(out, d.env...)
}

// spawn runs command through "sh -c" so a step's target can carry
// shell quoting and operators the way authors write them in scenario
// YAML, rather than a naive whitespace split.
func (d *Driver) spawn(ctx context.Context, command string, stdin bool) (*session, error) {
	sess := &session{done: make(chan struct{})}

	info, err := d.manager.Start("sh", []string{"-c", command}, process.StartOptions{
		Dir:   d.dir,
		Env:   d.environ(),
		Stdin: stdin,
		OnLine: func(stream, line string) {
			sess.appendLine(line)
		},
	})
	if err != nil {
		return nil, err
	}
	sess.id = info.ID

	d.mu.Lock()
	d.sessions[sess.id] = sess
	d.lastID = sess.id
	d.mu.Unlock()

	go func() {
		final, waitErr := d.manager.WaitFor(context.Background(), sess.id, 0)
		sess.mu.Lock()
		if waitErr == nil && final != nil {
			sess.exitCode = final.ExitCode
		}
		sess.mu.Unlock()
		close(sess.done)
	}()

	return sess, nil
}

func (d *Driver) doExecute(ctx context.Context, step scenario.Step, sr *scenario.StepResult) error {
	sess, err := d.spawn(ctx, step.Target, false)
	if err != nil {
		return err
	}
	if err := d.awaitExit(ctx, sess, step.Timeout); err != nil {
		return err
	}
	sr.Status = passOrFail(sess.exitCode)
	sr.ActualResult = sess.text()
	return nil
}

func (d *Driver) doExecuteWithInput(ctx context.Context, step scenario.Step, sr *scenario.StepResult) error {
	sess, err := d.spawn(ctx, step.Target, true)
	if err != nil {
		return err
	}
	if err := d.manager.Write(sess.id, []byte(step.Value+"\n")); err != nil {
		return err
	}
	if err := d.awaitExit(ctx, sess, step.Timeout); err != nil {
		return err
	}
	sr.Status = passOrFail(sess.exitCode)
	sr.ActualResult = sess.text()
	return nil
}

func (d *Driver) awaitExit(ctx context.Context, sess *session, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case <-sess.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for process to exit", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func passOrFail(exitCode *int) scenario.Status {
	if exitCode != nil && *exitCode == 0 {
		return scenario.StatusPassed
	}
	return scenario.StatusFailed
}

func (d *Driver) doValidateExitCode(target string, step scenario.Step, sr *scenario.StepResult) error {
	sess := d.findSession(target)
	if sess == nil {
		return fmt.Errorf("no session %q", target)
	}
	<-sess.done
	want, err := strconv.Atoi(step.Value)
	if err != nil {
		return fmt.Errorf("validate_exit_code requires an integer value: %w", err)
	}
	sess.mu.Lock()
	got := sess.exitCode
	sess.mu.Unlock()
	sr.ActualResult = got
	if got != nil && *got == want {
		sr.Status = scenario.StatusPassed
	} else {
		sr.Status = scenario.StatusFailed
		sr.Error = fmt.Sprintf("expected exit code %d, got %v", want, got)
	}
	return nil
}

func (d *Driver) doGetOrValidateOutput(target string, step scenario.Step, sr *scenario.StepResult) error {
	sess := d.findSession(target)
	if sess == nil {
		return fmt.Errorf("no session %q", target)
	}
	text := sess.text()
	sr.ActualResult = text
	if step.Expected == nil {
		sr.Status = scenario.StatusPassed
		return nil
	}
	want, _ := step.Expected.(string)
	if strings.Contains(text, want) {
		sr.Status = scenario.StatusPassed
	} else {
		sr.Status = scenario.StatusFailed
		sr.Error = fmt.Sprintf("output did not contain %q", want)
	}
	return nil
}

func (d *Driver) doWaitForOutput(ctx context.Context, target string, step scenario.Step, sr *scenario.StepResult) error {
	sess := d.findSession(target)
	if sess == nil {
		return fmt.Errorf("no session %q", target)
	}
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	deadline := time.Now().Add(timeout)
	for {
		text := sess.text()
		if strings.Contains(text, step.Value) {
			sr.Status = scenario.StatusPassed
			sr.ActualResult = text
			return nil
		}
		if time.Now().After(deadline) {
			sr.Status = scenario.StatusFailed
			sr.Error = fmt.Sprintf("timed out waiting for %q in output", step.Value)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (d *Driver) doKill(target string, sr *scenario.StepResult) error {
	if target == "" {
		return fmt.Errorf("kill requires a target session")
	}
	if err := d.manager.Kill(target, syscall.SIGTERM); err != nil {
		return err
	}
	sr.Status = scenario.StatusPassed
	return nil
}

func (d *Driver) doPathCheck(step scenario.Step, sr *scenario.StepResult, wantDir bool) error {
	info, err := os.Stat(step.Target)
	exists := err == nil && info.IsDir() == wantDir
	sr.ActualResult = exists
	if exists {
		sr.Status = scenario.StatusPassed
	} else {
		sr.Status = scenario.StatusFailed
		sr.Error = fmt.Sprintf("path %q did not satisfy existence check", step.Target)
	}
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

func (d *Driver) findSession(id string) *session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[id]
}
