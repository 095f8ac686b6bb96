// Пакет flagx разбирает только часть флагов командной строки, чтобы
// несколько компонентов и подкоманд могли делить os.Args.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs оставляет в args только флаги из allowedFlags вместе с их значениями.
//
// Поддерживаемые форматы:
//  1. Флаг и значение отдельными аргументами: -c conf.json
//  2. Флаг и значение через '=':              -config=conf.json
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// следующий аргумент - значение, если это не другой флаг
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlag возвращает путь к файлу конфигурации из -c или -config.
// Если флага нет, возвращается пустая строка.
func JsonConfigFlag(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}
