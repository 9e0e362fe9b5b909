package main

import (
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/kardianos/osext"
	"github.com/otiai10/copy"
)

const serviceFile = `
[Unit]
Description=Simon Says memory game

[Service]
ExecStart={{.BinPath}} run -c {{ .ConfigFile }}
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

var serviceTmpl = template.Must(template.New("service").Parse(serviceFile))

func install(prefix string, reset bool) error {
	if prefix == "" {
		prefix = "/"
	}
	bPath, err := osext.Executable()
	if err != nil {
		return err
	}

	binPath := filepath.Join(prefix, "usr/bin/simonsays")
	err = copy.Copy(bPath, binPath, copy.Options{
		PermissionControl: copy.AddPermission(0755),
	})
	if err != nil {
		return err
	}

	dstPath := filepath.Join(prefix, "usr/lib/systemd/system/simonsays.service")
	os.MkdirAll(filepath.Dir(dstPath), 0755)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer dst.Close()

	err = serviceTmpl.Execute(dst, struct{ BinPath, ConfigFile string }{binPath, configPath})
	if err != nil {
		return err
	}
	dst.Close()

	dstPath = filepath.Join(prefix, configPath)
	_, err = os.Stat(dstPath)
	if err == nil && !reset {
		return nil
	}

	os.MkdirAll(filepath.Dir(dstPath), 0755)
	dst, err = os.Create(dstPath)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.WriteString(dst, configFile)
	if err != nil {
		return err
	}
	return dst.Close()
}
