// Package sftpclient hands run artifacts (entity/match reports) to the
// drop directory the catalog team inspects.
package sftpclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type Config struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string
}

// UploadReports uploads local files into cfg.RemoteDir, keeping their
// base names. One failing file aborts the upload; the caller treats the
// whole thing as best-effort.
func UploadReports(ctx context.Context, cfg Config, localPaths ...string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return fmt.Errorf("sftp: missing REPORT_SFTP_HOST / REPORT_SFTP_USER / REPORT_SFTP_PASS")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}

	sshCfg := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		// TODO: cambiar a known_hosts cuando el drop server tenga una
		// key estable.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	// dial en goroutine para respetar ctx
	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		return fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer cli.Close()

	if err := cli.MkdirAll(cfg.RemoteDir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}

	for _, local := range localPaths {
		if err := uploadOne(cli, cfg.RemoteDir, local); err != nil {
			return err
		}
	}
	return nil
}

func uploadOne(cli *sftp.Client, remoteDir, localPath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	remotePath := path.Join(remoteDir, path.Base(localPath))
	dst, err := cli.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("sftp: upload %s: %w", localPath, err)
	}
	return nil
}
