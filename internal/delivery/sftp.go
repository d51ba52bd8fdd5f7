package delivery

import (
	"fmt"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig describes a remote drop directory for exports.
type SFTPConfig struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string
}

// SFTP uploads each payload to a remote drop directory. A fresh
// connection per delivery keeps the deliverer stateless; exports are rare
// enough that connection reuse buys nothing.
type SFTP struct {
	cfg SFTPConfig
}

func NewSFTP(cfg SFTPConfig) (*SFTP, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("sftp: host and user are required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	return &SFTP{cfg: cfg}, nil
}

func (s *SFTP) Deliver(data []byte, filename string) error {
	sshCfg := &ssh.ClientConfig{
		User: s.cfg.User,
		Auth: []ssh.AuthMethod{ssh.Password(s.cfg.Pass)},
		// TODO: replace with known_hosts verification once the drop host
		// has a stable key.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	sshClient, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return fmt.Errorf("sftp: dial %s: %w", addr, err)
	}
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer cli.Close()

	if err := cli.MkdirAll(s.cfg.RemoteDir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", s.cfg.RemoteDir, err)
	}

	remotePath := path.Join(s.cfg.RemoteDir, filename)
	dst, err := cli.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: create %s: %w", remotePath, err)
	}
	defer dst.Close()

	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("sftp: upload %s: %w", remotePath, err)
	}
	return nil
}
