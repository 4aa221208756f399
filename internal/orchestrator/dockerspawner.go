package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// DockerSpawner is the concrete Spawner used outside tests: each worker is
// a `docker run` container, CPU-pinned, memory-capped, and given tmpfs
// work directories; a read-only root FS and the rest of the sandbox are
// left to the image itself (the sandbox's internals are out of scope; this
// is only the process boundary around it). Grounded on the original tool's own
// docker-run invocation (one CPU, tmpfs mounts, --memory/--memory-swap
// set equal to disable swap).
type DockerSpawner struct {
	Image         string
	MemoryLimitGB int
}

// Spawn starts one `docker run --interactive` container pinned to
// cpuIndex via --cpuset-cpus, with env carrying the sandbox's
// TEST_END_DELIMITER/TOOL/TARGET contract.
func (d DockerSpawner) Spawn(ctx context.Context, cpuIndex int, env WorkerEnv) (Child, error) {
	limit := d.MemoryLimitGB
	if limit <= 0 {
		limit = 8
	}

	args := []string{
		"run", "--rm", "--interactive",
		"--cpuset-cpus", fmt.Sprintf("%d", cpuIndex),
		"--cpus=1",
		"--cpu-shares=2",
		"--tmpfs=/root/build:exec",
		"--tmpfs=/root/.cache",
		"--tmpfs=/tmp:exec",
		"--env", "TEST_END_DELIMITER=" + env.Delimiter,
		"--env", "TOOL=" + env.Tool,
		"--env", "TARGET=" + env.Target,
		"--env", "RUST_BACKTRACE=1",
		fmt.Sprintf("--memory=%dg", limit),
		fmt.Sprintf("--memory-swap=%dg", limit),
		d.Image,
	}

	cmd := exec.CommandContext(ctx, "docker", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: docker stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: docker stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("orchestrator: docker run: %w", err)
	}

	c := &dockerChild{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		reader: bufio.NewReader(stdout),
	}
	go c.wait()
	return c, nil
}

// dockerChild wraps a running docker container's process handle. reader
// wraps stdout exactly once, at construction, and is handed back
// unchanged on every Stdout call: it is read across many runOnce calls
// over this child's lifetime, and must keep whatever it has already
// buffered ahead of a given run's sentinel for the next run to consume.
type dockerChild struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	reader *bufio.Reader

	mu     sync.Mutex
	exited bool
}

func (c *dockerChild) Stdin() io.Writer      { return c.stdin }
func (c *dockerChild) Stdout() *bufio.Reader { return c.reader }

func (c *dockerChild) Exited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

func (c *dockerChild) Close() error {
	_ = c.stdin.Close()
	_ = c.cmd.Process.Kill()
	return nil
}

// wait blocks until the container process exits, marking it crashed; this
// is the liveness probe the orchestrator checks after every run.
func (c *dockerChild) wait() {
	_ = c.cmd.Wait()
	c.mu.Lock()
	c.exited = true
	c.mu.Unlock()
}
