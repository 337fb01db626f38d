package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/stockopt_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// LowStockLine 低库存告警邮件中的一行
type LowStockLine struct {
	SKU          string
	Name         string
	Quantity     int
	ReorderPoint float64
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(to, username string) error {
	subject := "欢迎加入 - 库存优化管理平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">欢迎加入！</h2>
        <p>您好，%s！</p>
        <p>感谢您注册库存优化管理平台。</p>
        <p>现在您可以：</p>
        <ul>
            <li>维护物料、供应商和仓库档案</li>
            <li>记录出入库和盘点调整</li>
            <li>运行补货参数优化并查看结果</li>
        </ul>
        <p>开始使用吧！</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username)

	return s.sendHTML(to, subject, body)
}

// SendLowStockAlert 发送低库存告警邮件
func (s *Service) SendLowStockAlert(to string, lines []LowStockLine) error {
	subject := fmt.Sprintf("低库存告警：%d 个物料低于再订货点", len(lines))

	var rows strings.Builder
	for _, line := range lines {
		rows.WriteString(fmt.Sprintf(`
            <tr>
                <td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td>
                <td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td>
                <td style="padding: 8px; border-bottom: 1px solid #e5e7eb; text-align: right;">%d</td>
                <td style="padding: 8px; border-bottom: 1px solid #e5e7eb; text-align: right;">%.1f</td>
            </tr>`, line.SKU, line.Name, line.Quantity, line.ReorderPoint))
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #dc2626;">低库存告警</h2>
        <p>以下物料当前库存已低于再订货点，请及时安排补货：</p>
        <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
            <tr style="background-color: #f3f4f6;">
                <th style="padding: 8px; text-align: left;">SKU</th>
                <th style="padding: 8px; text-align: left;">名称</th>
                <th style="padding: 8px; text-align: right;">当前库存</th>
                <th style="padding: 8px; text-align: right;">再订货点</th>
            </tr>%s
        </table>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, rows.String())

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
